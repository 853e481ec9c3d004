package cache

import "strconv"

// Kind separates key spaces.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindScaled       // scaled feature matrix plus scaler
	KindCluster      // k-means model plus labels
	KindJoined       // joined table plus join report
)

func (k Kind) String() string {
	switch k {
	case KindScaled:
		return "scaled"
	case KindCluster:
		return "cluster"
	case KindJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Key identifies a memoized value.
type Key struct {
	Kind   Kind
	Digest uint64
}

func (k Key) String() string {
	return k.Kind.String() + ":" + strconv.FormatUint(k.Digest, 16)
}
