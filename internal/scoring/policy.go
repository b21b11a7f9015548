package scoring

// WeightPolicy decides how much a single review counts.
type WeightPolicy interface {
	Weight(isAnonymous bool) float64
}

// AnonymityPolicy discounts reviews whose author chose to stay anonymous.
type AnonymityPolicy struct {
	Anonymous  float64
	Identified float64
}

// DefaultPolicy counts anonymous reviews at half weight.
var DefaultPolicy = AnonymityPolicy{Anonymous: 0.5, Identified: 1.0}

// Weight implements WeightPolicy
func (p AnonymityPolicy) Weight(isAnonymous bool) float64 {
	if isAnonymous {
		return p.Anonymous
	}
	return p.Identified
}
