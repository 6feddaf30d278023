package samples

import (
	"github.com/templet-xyz/go-templet/schema"
)

// LateDeliverySample is a penalty clause exercising conditionals, plain and
// formatted numeric bindings, and an enum.
type LateDeliverySample struct{}

// Name implements Sample.
func (s *LateDeliverySample) Name() string {
	return "late-delivery"
}

// Description implements Sample.
func (s *LateDeliverySample) Description() string {
	return "Late delivery penalty clause with force majeure carve-out"
}

// Model implements Sample.
func (s *LateDeliverySample) Model() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	decls := []*schema.TypeDecl{
		{
			FQN:  "io.templet.latedelivery.TemporalUnit",
			Kind: schema.KindEnum,
			EnumValues: []string{
				"days", "weeks",
			},
		},
		{
			FQN:     "io.templet.latedelivery.LateDeliveryClause",
			Kind:    schema.KindConcept,
			Extends: "Clause",
			Properties: []schema.Property{
				{Name: "clauseId", Type: schema.TypeString, IsIdentifier: true},
				{Name: "forceMajeure", Type: schema.TypeBoolean},
				{Name: "penaltyDuration", Type: schema.TypeInteger},
				{Name: "penaltyUnit", Type: "io.templet.latedelivery.TemporalUnit"},
				{Name: "penaltyPercentage", Type: schema.TypeDouble},
				{Name: "capPercentage", Type: schema.TypeDouble},
				{Name: "termination", Type: schema.TypeInteger},
			},
		},
	}
	for _, d := range decls {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Markup implements Sample.
func (s *LateDeliverySample) Markup() string {
	return `Late Delivery and Penalty. In case of delayed delivery{{#if forceMajeure}} except for Force Majeure cases,{{/if}} the Seller shall pay to the Buyer for every {{penaltyDuration}} {{penaltyUnit}} of delay a penalty amounting to {{penaltyPercentage as "0,0.00"}}% of the total value of the Equipment. The total amount of penalty shall not exceed {{capPercentage as "0,0.00"}}% of the total value. If the delay is more than {{termination}} days, the Buyer is entitled to terminate this Contract.`
}

// Text implements Sample.
func (s *LateDeliverySample) Text() string {
	return `Late Delivery and Penalty. In case of delayed delivery except for Force Majeure cases, the Seller shall pay to the Buyer for every 9 days of delay a penalty amounting to 7.00% of the total value of the Equipment. The total amount of penalty shall not exceed 52.00% of the total value. If the delay is more than 2 days, the Buyer is entitled to terminate this Contract.`
}
