package colors

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// List is a product's available colors, keeping the original labels for user
// feedback. Catalog rows written by older back-office generations store it as
// a single string, or as a JSON-encoded array inside a string attribute;
// newer rows use a native list. All three decode into a List here, at the
// store boundary, so nothing downstream ever sees the raw encodings.
type List []string

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (l *List) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberNULL:
		*l = nil
		return nil
	case *types.AttributeValueMemberS:
		*l = FromString(v.Value)
		return nil
	case *types.AttributeValueMemberSS:
		*l = List(v.Value)
		return nil
	case *types.AttributeValueMemberL:
		out := make(List, 0, len(v.Value))
		for _, el := range v.Value {
			s, ok := el.(*types.AttributeValueMemberS)
			if !ok {
				return fmt.Errorf("color list element is %T, want string", el)
			}
			out = append(out, s.Value)
		}
		*l = out
		return nil
	}
	return fmt.Errorf("unsupported color attribute type %T", av)
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
// Writes always use the native-list encoding.
func (l List) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if l == nil {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	out := make([]types.AttributeValue, 0, len(l))
	for _, c := range l {
		out = append(out, &types.AttributeValueMemberS{Value: c})
	}
	return &types.AttributeValueMemberL{Value: out}, nil
}

// FromString decodes the string encodings: either a JSON array
// (`["Azul","Rojo"]`) or a plain single label.
func FromString(s string) List {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return List(arr)
		}
	}
	return List{s}
}

// Contains reports whether label matches one of the available colors,
// comparing normalized forms.
func (l List) Contains(label string) bool {
	want := Normalize(label)
	for _, c := range l {
		if Normalize(c) == want {
			return true
		}
	}
	return false
}
