package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/enventory/pkg/validate"
)

type loginInput struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=4"`
}

type orderInput struct {
	ProductID    string  `json:"productID" validate:"required"`
	CustomerName string  `json:"customerName" validate:"required,max=255"`
	Quantity     int     `json:"quantity" validate:"required,gte=1"`
	Cod          float64 `json:"cod" validate:"required,gte=0"`
	Role         string  `json:"role" validate:"nullable,in=admin,worker"`
	Image        string  `json:"image" validate:"nullable,url"`
}

func TestStructRequired(t *testing.T) {
	errs := validate.Struct(&loginInput{})
	assert.True(t, validate.HasErrors(errs))
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestStructPasses(t *testing.T) {
	errs := validate.Struct(&loginInput{Username: "ravi", Password: "secret"})
	assert.Empty(t, errs)
}

func TestMinMax(t *testing.T) {
	errs := validate.Struct(&loginInput{Username: "r", Password: "secret"})
	assert.Contains(t, errs, "username")

	errs = validate.Struct(&loginInput{Username: "ravi", Password: "abc"})
	assert.Contains(t, errs, "password")
}

func TestNumericBounds(t *testing.T) {
	in := orderInput{ProductID: "p1", CustomerName: "Asha", Quantity: 0, Cod: 10}
	errs := validate.Struct(&in)
	// zero quantity is caught by required before gte even runs
	assert.Contains(t, errs, "quantity")

	in.Quantity = -2
	errs = validate.Struct(&in)
	assert.Contains(t, errs, "quantity")

	in.Quantity = 3
	errs = validate.Struct(&in)
	assert.NotContains(t, errs, "quantity")
}

func TestInRuleWithCommas(t *testing.T) {
	in := orderInput{ProductID: "p1", CustomerName: "Asha", Quantity: 1, Cod: 5, Role: "manager"}
	errs := validate.Struct(&in)
	assert.Contains(t, errs, "role")

	in.Role = "worker"
	errs = validate.Struct(&in)
	assert.NotContains(t, errs, "role")
}

func TestNullableSkipsEmpty(t *testing.T) {
	in := orderInput{ProductID: "p1", CustomerName: "Asha", Quantity: 1, Cod: 5}
	errs := validate.Struct(&in)
	assert.NotContains(t, errs, "role")
	assert.NotContains(t, errs, "image")

	in.Image = "not-a-url"
	errs = validate.Struct(&in)
	assert.Contains(t, errs, "image")
}
