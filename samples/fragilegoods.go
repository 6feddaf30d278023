package samples

import (
	"github.com/templet-xyz/go-templet/schema"
)

// FragileGoodsSample is a carriage clause exercising a formatted date and a
// bulleted list of nested shipments.
type FragileGoodsSample struct{}

// Name implements Sample.
func (s *FragileGoodsSample) Name() string {
	return "fragile-goods"
}

// Description implements Sample.
func (s *FragileGoodsSample) Description() string {
	return "Fragile goods carriage clause with a shipment manifest"
}

// Model implements Sample.
func (s *FragileGoodsSample) Model() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	decls := []*schema.TypeDecl{
		{
			FQN:  "io.templet.fragilegoods.Shipment",
			Kind: schema.KindConcept,
			Properties: []schema.Property{
				{Name: "description", Type: schema.TypeString},
				{Name: "weight", Type: schema.TypeDouble},
			},
		},
		{
			FQN:     "io.templet.fragilegoods.FragileGoodsClause",
			Kind:    schema.KindConcept,
			Extends: "Clause",
			Properties: []schema.Property{
				{Name: "clauseId", Type: schema.TypeString, IsIdentifier: true},
				{Name: "deliveryDate", Type: schema.TypeDateTime},
				{Name: "items", Type: "io.templet.fragilegoods.Shipment", IsArray: true},
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
func (s *FragileGoodsSample) Markup() string {
	return `Fragile Goods. On {{deliveryDate as "D MMM YYYY"}} the Carrier accepts the following shipments:
{{#ulist items}}{{description}} weighing {{weight}} kg{{/ulist}}
All shipments travel under seal.`
}

// Text implements Sample.
func (s *FragileGoodsSample) Text() string {
	return `Fragile Goods. On 6 Jan 2022 the Carrier accepts the following shipments:
- "a porcelain vase" weighing 1.5 kg
- "a venetian mirror" weighing 12.25 kg
All shipments travel under seal.`
}
