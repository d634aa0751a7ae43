package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCredentialGuide explains where the exporter looks for credentials, in
// lookup order, naming the stores available on this machine.
func ShowCredentialGuide(w io.Writer, backends []string) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "AFDIAN CREDENTIALS")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The exporter logs in with the account (phone number or e-mail)")
	fmt.Fprintln(w, "and password you use on the afdian login page. It looks for them in:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. --account flag, config file or AFDSCRAPER_ACCOUNT / AFDSCRAPER_PASSWORD")
	fmt.Fprintf(w, "  2. stored credentials (%s)\n", strings.Join(backends, ", "))
	fmt.Fprintln(w, "  3. an interactive prompt")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store credentials once with 'afdscraper auth login'.")
	fmt.Fprintln(w, "The password is never written to logs or the progress file.")
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
