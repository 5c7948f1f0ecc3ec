package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/microempresa/portal-client/internal/core/domain"
)

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error { return t.tw.Flush() }

func say(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func itoa(n int) string { return strconv.Itoa(n) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printIdentity(w io.Writer, identity *domain.Identity) {
	if identity == nil {
		say(w, "Not signed in.")
		return
	}
	say(w, "%s (%s) [%s]", identity.DisplayName(), identity.Role.Label(), identity.Initials())
	if avatar := identity.AvatarURL(); avatar != "" {
		say(w, "logo: %s", avatar)
	}
	if len(identity.AvailableRoles) > 1 {
		roles := make([]string, len(identity.AvailableRoles))
		for i, r := range identity.AvailableRoles {
			roles[i] = r.String()
		}
		say(w, "roles: %s", strings.Join(roles, ", "))
	}
	say(w, "menu: %s", strings.Join(menu(identity), ", "))
}

// assignments parses name=value arguments in order.
func assignments(args []string) ([][2]string, error) {
	out := make([][2]string, 0, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, domain.NewValidationError(a, "expected field=value, got "+a)
		}
		out = append(out, [2]string{strings.TrimSpace(name), value})
	}
	return out, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "expected a numeric id, got "+s)
	}
	return id, nil
}
