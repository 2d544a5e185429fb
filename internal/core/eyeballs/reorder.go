package eyeballs

// ReorderResult 重排结果
type ReorderResult int

const (
	// ReorderNone 未重排：没有 IPv4 候选，或 IPv4 出现在任何 IPv6 之前
	ReorderNone ReorderResult = iota
	// ReorderMoved 首个 IPv4 候选已移到首个 IPv6 候选之后
	ReorderMoved
	// ReorderAdjacent 首个 IPv4 候选本就紧随首个 IPv6 候选，无需移动
	ReorderAdjacent
)

func (r ReorderResult) String() string {
	switch r {
	case ReorderMoved:
		return "moved"
	case ReorderAdjacent:
		return "adjacent"
	default:
		return "none"
	}
}

// Reorder 原地重排候选序列，使回退族能尽早参与竞速
//
// 单次扫描，记录首个 IPv6 候选；遇到首个 IPv4 候选时：
//   - 此前没有 IPv6：保持原样，返回 ReorderNone
//   - 已紧随首个 IPv6：返回 ReorderAdjacent
//   - 否则将其移到首个 IPv6 之后，其余候选相对顺序不变，返回 ReorderMoved
//
// 每次调用最多移动一个 IPv4 候选。
func Reorder(cands []Candidate) ReorderResult {
	first6 := -1
	for i, c := range cands {
		switch c.Family {
		case FamilyIPv6:
			if first6 < 0 {
				first6 = i
			}
		case FamilyIPv4:
			if first6 < 0 {
				return ReorderNone
			}
			if i == first6+1 {
				return ReorderAdjacent
			}
			v4 := cands[i]
			copy(cands[first6+2:i+1], cands[first6+1:i])
			cands[first6+1] = v4
			return ReorderMoved
		}
	}
	return ReorderNone
}
