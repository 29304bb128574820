package engine

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talgya/stratagem/internal/profile"
)

func disasterNotice(d *profile.Disaster, ev *ActiveEvent, st *State) *Notice {
	name := d.Name
	if name == "" {
		name = d.Key
	}
	body := d.Description
	switch n := len(ev.Enclaves); {
	case ev.Radius.Is(profile.Global):
		body += " No enclave is spared."
	case n == 1:
		if e := st.Enclaves[ev.Enclaves[0]]; e != nil {
			body += fmt.Sprintf(" %s is in its path.", e.Name)
		}
	case n > 1:
		body += fmt.Sprintf(" %d enclaves are in its path.", n)
	}
	return &Notice{
		Turn:     st.Turn,
		Profile:  d.Key,
		Title:    cases.Title(language.English).String(name),
		Body:     body,
		Icon:     d.Icon,
		Enclaves: ev.Enclaves,
	}
}
