// Package eyeballs 实现 Happy Eyeballs（RFC 6555）连接竞速
//
// 给定解析器产生的有序候选地址（IPv6 与 IPv4 混合），eyeballs 通过非阻塞
// connect 与单次多路就绪等待在单个 goroutine 内让候选相互竞速：
// 优先 IPv6，同时给 IPv4 一个有界延迟后加入的机会，返回首个成功的连接，
// 并关闭所有落败的尝试。
//
// # 组件
//
//   - Reorder: 将首个 IPv4 候选移到首个 IPv6 候选之后，使回退族尽早参赛
//   - RaceContext: 进行中尝试的登记表，追加式增长，句柄为稳定的整数下标
//   - Dialer: 连接/多路复用驱动，逐个发起候选并等待就绪
//   - Teardown: 竞速结束时关闭除胜者外的全部描述符
//
// # 竞速流程
//
// 按重排后的顺序处理每个候选：
//  1. 创建与候选族/类型/协议匹配的 socket（失败则跳过该候选）
//  2. 切换为非阻塞模式，记录原始 flags
//  3. 发起 connect：立即成功即为胜者；EINPROGRESS 则登记尝试；其他错误关闭并跳过
//  4. 对所有未被中和的尝试执行 poll：
//     - 非最后一个候选等待 FallbackDelay（默认 300ms），超时则保留尝试并发起下一个候选
//     - 最后一个候选无界等待，错误就绪只中和对应尝试，直到胜者出现或全部失败
//  5. 可写就绪后检查 SO_ERROR 以区分成功与延迟的连接拒绝
//
// 同一次 poll 中多个描述符同时就绪时，登记下标最小者胜出，
// 因此双栈竞速中 IPv6 的优先是确定性的，而不依赖时序。
//
// # 使用示例
//
//	d := eyeballs.NewDialer(config.DefaultRaceConfig())
//	res, err := d.Race(ctx, candidates)
//	if err != nil {
//	    return err
//	}
//	conn, err := eyeballs.FileConn(res)
//
// # 错误
//
// 单个候选的失败（socket/connect/SO_ERROR）在本地吸收，仅记录到 ExhaustedError；
// 只有 poll 本身失败（MultiplexError）与全部候选耗尽（ExhaustedError）会返回给调用方。
package eyeballs
