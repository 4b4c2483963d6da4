// Package debug serves build and request metadata for troubleshooting.
package debug

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type Service struct {
	RepoUrl   string
	Sha1ver   string
	BuildTime string
}

func servePlainText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(s)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s)) // nolint
}

func (d *Service) HandleDebug(w http.ResponseWriter, r *http.Request) {
	a := []string{fmt.Sprintf("url: %s %s", r.Method, r.RequestURI)}

	a = append(a, "Headers:")
	for k, v := range r.Header {
		switch len(v) {
		case 0:
			a = append(a, k)
		case 1:
			a = append(a, fmt.Sprintf("  %s: %v", k, v[0]))
		default:
			a = append(a, "  "+k+":")
			for _, v2 := range v {
				a = append(a, "    "+v2)
			}
		}
	}

	a = append(a, "")
	a = append(a, fmt.Sprintf("ver: %s/commit/%s", d.RepoUrl, d.Sha1ver))
	a = append(a, fmt.Sprintf("built on: %s", d.BuildTime))

	servePlainText(w, strings.Join(a, "\n"))
}
