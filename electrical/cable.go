package electrical

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidParams = errors.New("invalid electrical parameters")
	ErrUnknownCable  = errors.New("unknown cable type")
)

// Cable holds resistance and reactance in ohm per km.
type Cable struct {
	Code        string
	Label       string
	ResistanceR float64
	ReactanceX  float64
}

var Cables = []Cable{
	{Code: "AL_PRE_2x16", Label: "PR 2x16 mm² AL", ResistanceR: 2.1, ReactanceX: 0.08},
	{Code: "AL_PRE_2x25", Label: "PR 2x25 mm² AL", ResistanceR: 1.38, ReactanceX: 0.08},
	{Code: "AL_PRE_2x35", Label: "PR 2x35 mm² AL", ResistanceR: 0.986, ReactanceX: 0.078},
	{Code: "CU_SUB_2x6", Label: "Underground copper 2x6 mm²", ResistanceR: 3.39, ReactanceX: 0.095},
	{Code: "CU_SUB_2x10", Label: "Underground copper 2x10 mm²", ResistanceR: 2.01, ReactanceX: 0.09},
	{Code: "CU_SUB_2x16", Label: "Underground copper 2x16 mm²", ResistanceR: 1.26, ReactanceX: 0.085},
}

// LookupCable finds a cable by code or label, ignoring case.
func LookupCable(name string) (Cable, error) {
	name = strings.TrimSpace(name)
	for _, c := range Cables {
		if strings.EqualFold(c.Code, name) || strings.EqualFold(c.Label, name) {
			return c, nil
		}
	}
	return Cable{}, fmt.Errorf("%w: %q", ErrUnknownCable, name)
}
