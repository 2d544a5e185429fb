package eyeballs

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func v6(port uint16) Candidate {
	return NewCandidate(netip.AddrPortFrom(netip.MustParseAddr("2001:db8::1"), port), 0, 0, "")
}

func v4(port uint16) Candidate {
	return NewCandidate(netip.AddrPortFrom(netip.MustParseAddr("192.0.2.1"), port), 0, 0, "")
}

func ports(cands []Candidate) []uint16 {
	out := make([]uint16, len(cands))
	for i, c := range cands {
		out[i] = c.Addr.Port()
	}
	return out
}

// TestReorder 测试候选重排
func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		in    []Candidate
		want  []uint16
		moved ReorderResult
	}{
		{
			name:  "v6 v4 v6 v4 already adjacent",
			in:    []Candidate{v6(1), v4(2), v6(3), v4(4)},
			want:  []uint16{1, 2, 3, 4},
			moved: ReorderAdjacent,
		},
		{
			name:  "first v4 moved after first v6",
			in:    []Candidate{v6(1), v6(2), v6(3), v4(4), v4(5)},
			want:  []uint16{1, 4, 2, 3, 5},
			moved: ReorderMoved,
		},
		{
			name:  "v4 only",
			in:    []Candidate{v4(1), v4(2)},
			want:  []uint16{1, 2},
			moved: ReorderNone,
		},
		{
			name:  "v4 first",
			in:    []Candidate{v4(1), v6(2), v6(3), v4(4)},
			want:  []uint16{1, 2, 3, 4},
			moved: ReorderNone,
		},
		{
			name:  "v6 only",
			in:    []Candidate{v6(1), v6(2)},
			want:  []uint16{1, 2},
			moved: ReorderNone,
		},
		{
			name:  "empty",
			in:    nil,
			want:  []uint16{},
			moved: ReorderNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reorder(tt.in)
			assert.Equal(t, tt.moved, got)
			assert.Equal(t, tt.want, ports(tt.in))
		})
	}
}

// TestReorder_Idempotent 测试重排幂等
func TestReorder_Idempotent(t *testing.T) {
	cands := []Candidate{v6(1), v6(2), v4(3), v6(4), v4(5)}

	assert.Equal(t, ReorderMoved, Reorder(cands))
	assert.Equal(t, []uint16{1, 3, 2, 4, 5}, ports(cands))

	assert.Equal(t, ReorderAdjacent, Reorder(cands))
	assert.Equal(t, []uint16{1, 3, 2, 4, 5}, ports(cands))
}

func TestReorderResult_String(t *testing.T) {
	assert.Equal(t, "none", ReorderNone.String())
	assert.Equal(t, "moved", ReorderMoved.String())
	assert.Equal(t, "adjacent", ReorderAdjacent.String())
}

// TestNewCandidate 测试地址族推导
func TestNewCandidate(t *testing.T) {
	mapped := NewCandidate(netip.MustParseAddrPort("[::ffff:192.0.2.7]:80"), 0, 0, "example.com")
	assert.Equal(t, FamilyIPv4, mapped.Family)
	assert.True(t, mapped.Addr.Addr().Is4())
	assert.Equal(t, "example.com (192.0.2.7:80)", mapped.String())

	c := NewCandidate(netip.MustParseAddrPort("[2001:db8::5]:443"), 1, 6, "")
	assert.Equal(t, FamilyIPv6, c.Family)
	assert.Equal(t, "[2001:db8::5]:443", c.String())
	assert.Equal(t, "ipv6", c.Family.String())

	assert.Equal(t, FamilyUnknown, FamilyOf(netip.Addr{}))
	assert.Equal(t, "unknown", FamilyUnknown.String())
}
