package services

// CheckRosterInvariant reports whether the formal roster headcount equals
// the configured size. It is a gate, not a repair: a failing check must
// abort the enclosing transaction.
func CheckRosterInvariant(viceLeaderCount, memberCount int64, requiredSize int) bool {
	return viceLeaderCount+memberCount == int64(requiredSize)
}
