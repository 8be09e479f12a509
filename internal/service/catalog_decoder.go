package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

// CatalogDecoder turns an untyped sync payload into validated year nodes.
type CatalogDecoder struct {
	validator *validator.Validate
}

// NewCatalogDecoder constructs a decoder. Validation errors name fields by
// their JSON keys.
func NewCatalogDecoder(validate *validator.Validate) *CatalogDecoder {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(jsonTagName)
	return &CatalogDecoder{validator: validate}
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// Decode parses raw JSON. The root must be an array of years.
func (d *CatalogDecoder) Decode(raw []byte) ([]dto.YearNode, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, appErrors.ErrInvalidFormat
	}
	var items []interface{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status, appErrors.ErrInvalidFormat.Message)
	}
	return d.decodeItems(items)
}

// DecodeValue decodes an already parsed document, such as a YAML seed file.
func (d *CatalogDecoder) DecodeValue(value interface{}) ([]dto.YearNode, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, appErrors.ErrInvalidFormat
	}
	return d.decodeItems(items)
}

func (d *CatalogDecoder) decodeItems(items []interface{}) ([]dto.YearNode, error) {
	years := make([]dto.YearNode, len(items))
	for i, item := range items {
		if err := decodeNode(item, &years[i]); err != nil {
			return nil, invalidFormat(fmt.Sprintf("years[%d]: %v", i, err), err)
		}
		if err := d.validator.Struct(years[i]); err != nil {
			return nil, invalidFormat(validationMessage(i, err), err)
		}
	}
	return years, nil
}

func decodeNode(input interface{}, out *dto.YearNode) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func validationMessage(index int, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("years[%d]: %v", index, err)
	}
	fe := verrs[0]
	path := fe.Namespace()
	if dot := strings.IndexByte(path, '.'); dot >= 0 {
		path = path[dot+1:]
	}
	path = fmt.Sprintf("years[%d].%s", index, path)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

func invalidFormat(detail string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status,
		appErrors.ErrInvalidFormat.Message+" "+detail)
}
