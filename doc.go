// Package happyeyeballs 提供 Happy Eyeballs（RFC 6555）双栈连接竞速
//
// 给定主机名与端口，Client 解析出 IPv6/IPv4 候选地址，并在单个 goroutine 内
// 通过非阻塞 connect 与就绪多路复用对候选进行竞速：优先 IPv6，同时保证 IPv4
// 在一个固定的回退延迟后获得机会；返回最先建立的连接，并关闭所有落败的尝试。
//
// # 快速开始
//
//	import happyeyeballs "github.com/dep2p/go-happyeyeballs"
//
//	client, err := happyeyeballs.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	conn, res, err := client.Dial(ctx, "example.com", "443")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//	fmt.Println(res.Candidate, res.Elapsed)
//
// # 竞速规则
//
//   - 候选按顺序发起；每个非最后候选最多等待回退延迟（默认 300ms），
//     超时后保留已发起的尝试并发起下一个候选
//   - 最后一个候选发起后无界等待（受 ctx 截止时间限制），直到产生胜者或全部失败
//   - 同一轮多个尝试同时就绪时，登记顺序最靠前者胜出
//   - 首个 IPv4 候选会被移到首个 IPv6 候选之后（可通过 WithReorder 关闭）
//
// # 配置
//
// 配置优先级（从高到低）：Option > 环境变量（EYEBALLS_*）> 配置文件 > 默认值。
// 详见 config 包。
//
// # 文件组织
//
//	happyeyeballs/
//	├── doc.go       # 包文档
//	├── version.go   # 版本信息
//	├── client.go    # Client：Resolve、Race、Dial、Close
//	├── options.go   # 用户选项
//	├── fx.go        # Fx 应用组装
//	├── errors.go    # 公共错误
//	└── types.go     # 类型别名
package happyeyeballs
