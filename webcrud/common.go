package webcrud

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/axgrid/aftercare"
)

type IDConstraint = aftercare.IDConstraint

// ParseID разбирает id из пути. Работает и с именованными типами (type CardID uint).
func ParseID[ID IDConstraint](s string) (ID, error) {
	var id ID
	v := reflect.ValueOf(&id).Elem()
	switch v.Kind() {
	case reflect.String:
		if s == "" {
			return id, fmt.Errorf("empty id")
		}
		v.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return id, fmt.Errorf("invalid id %q", s)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || n == 0 {
			return id, fmt.Errorf("invalid id %q", s)
		}
		v.SetUint(n)
	default:
		return id, fmt.Errorf("unsupported id type %T", id)
	}
	return id, nil
}
