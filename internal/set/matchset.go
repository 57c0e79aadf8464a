package set

// IntersectMatchSets combines two MatchSets under intersection, resolving
// complements via De Morgan's laws:
//
//	cA     cB     result
//	false  false  intersect(A,B), complement=false
//	false  true   difference(A,B), complement=false
//	true   false  difference(B,A), complement=false
//	true   true   intersect(A,B), complement=true
func IntersectMatchSets(a, b MatchSet) MatchSet {
	switch {
	case a.Complement && b.Complement:
		return MatchSet{Set: Intersect(a.Set, b.Set), Complement: true}
	case a.Complement:
		return MatchSet{Set: Difference(b.Set, a.Set), Complement: false}
	case b.Complement:
		return MatchSet{Set: Difference(a.Set, b.Set), Complement: false}
	default:
		return MatchSet{Set: Intersect(a.Set, b.Set), Complement: false}
	}
}
