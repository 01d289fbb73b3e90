// Package fraud screens call transcripts for compliance and fraud-risk phrases.
package fraud

// KeywordList is an ordered set of phrases. Match results follow its order.
type KeywordList []string

var defaultKeywords = KeywordList{
	"Job guarantee",
	"100% placement guarantee",
	"Personal account",
	"Refund",
	"S4 Hana",
	"Server Access",
	"Free classes",
	"Lifetime Membership",
	"Providing classes in token amount",
	"Pay later",
	"Global",
	"Abusive words",
	"Sarcastic",
	"Rude",
	"Darling in ILX",
	"Freelancing support we are provided",
	"Placement support we are provided",
	"Affirm",
	"Free classes we are not provided",
	"Free Days",
	"Free trial",
	"Trial classes",
	"+ 45 Days Trial Classes",
}

// DefaultKeywords returns a copy of the built-in vocabulary.
func DefaultKeywords() KeywordList {
	out := make(KeywordList, len(defaultKeywords))
	copy(out, defaultKeywords)
	return out
}
