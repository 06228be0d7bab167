package services

import (
	"github.com/shashiranjanraj/catalog/pkg/validate"
)

// Length limits follow the product table column sizes.
type createRules struct {
	Title       string  `json:"title"       validate:"required,max=32"`
	SKU         string  `json:"sku"         validate:"required,max=32"`
	Description *string `json:"description" validate:"nullable,max=1024"`
}

type updateRules struct {
	Title       string  `json:"title"       validate:"nullable,max=32"`
	SKU         string  `json:"sku"         validate:"nullable,max=32"`
	Description *string `json:"description" validate:"nullable,max=1024"`
}

func checkCreate(in ProductInput) error {
	return check(createRules{Title: in.Title, SKU: in.SKU, Description: in.Description})
}

func checkUpdate(in ProductInput) error {
	return check(updateRules{Title: in.Title, SKU: in.SKU, Description: in.Description})
}

func check(rules any) error {
	if errs := validate.Struct(rules); errs != nil {
		return invalid("%s", errs.Error())
	}
	return nil
}
