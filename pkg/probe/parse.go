package probe

import (
	"strconv"
	"strings"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ParseVec3 parses "x,y,z"
func ParseVec3(s string) (core.Vec3, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return core.Vec3{}, errors.New("expected three comma separated numbers").
			WithTag("value", s)
	}

	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return core.Vec3{}, errors.New("invalid number").
				WithTag("value", s).
				Wrap(err)
		}
		v[i] = n
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}
