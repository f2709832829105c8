package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"veracity/internal/types"
)

// Resolver looks up DNS records. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

const (
	newDomainDays  = 30
	maxRedirectsOK = 3
)

var securityHeaders = map[string]string{
	"strict_transport_security": "Strict-Transport-Security",
	"content_security_policy":   "Content-Security-Policy",
	"x_frame_options":           "X-Frame-Options",
	"x_content_type_options":    "X-Content-Type-Options",
}

// splitDomain separates an optional port from a domain and drops "www."
func splitDomain(domain string) (host, port string) {
	host = hostOf(domain)
	if h, p, err := net.SplitHostPort(host); err == nil {
		host, port = h, p
	}
	return host, port
}

// registrableDomain returns the eTLD+1 for host, or host itself when it has none
func registrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// checkDomain resolves the domain and looks up its registration over RDAP.
// A domain that does not resolve is reported in Error.
func (v *CompanyVerifier) checkDomain(ctx context.Context, domain string) *types.DomainAnalysis {
	host, _ := splitDomain(domain)
	a := &types.DomainAnalysis{
		Domain:      host,
		Nameservers: []string{},
		Addresses:   []string{},
	}

	if ip := net.ParseIP(host); ip != nil {
		a.IsRegistered = true
		a.Addresses = append(a.Addresses, ip.String())
		a.Note = "IP address; registration data not applicable"
		return a
	}

	addrs, err := v.resolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		if err == nil {
			err = fmt.Errorf("no addresses")
		}
		a.Error = fmt.Sprintf("domain %s does not resolve: %v", host, err)
		a.Note = "Domain does not resolve"
		return a
	}
	a.IsRegistered = true
	a.Addresses = append(a.Addresses, addrs...)

	apex := registrableDomain(host)
	if ns, err := v.resolver.LookupNS(ctx, apex); err == nil {
		for _, n := range ns {
			a.Nameservers = append(a.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}

	if v.rdapURL == "" {
		a.Note = "Domain exists; registration lookup disabled"
		return a
	}
	reg, err := v.lookupRDAP(ctx, apex)
	if err != nil {
		v.logger.Debug("RDAP lookup failed", "domain", apex, "error", err.Error())
		a.Note = "Domain exists but registration data unavailable"
		return a
	}

	a.Registrar = reg.registrar
	if len(a.Nameservers) == 0 {
		a.Nameservers = append(a.Nameservers, reg.nameservers...)
	}
	if !reg.expires.IsZero() {
		a.ExpirationDate = reg.expires.Format(time.RFC3339)
	}
	if !reg.created.IsZero() {
		a.CreationDate = reg.created.Format(time.RFC3339)
		age := int(v.now().Sub(reg.created).Hours() / 24)
		a.AgeDays = &age
		a.IsSuspicious = age < newDomainDays
	}
	return a
}

type registration struct {
	registrar   string
	created     time.Time
	expires     time.Time
	nameservers []string
}

type rdapDomain struct {
	Events []struct {
		Action string `json:"eventAction"`
		Date   string `json:"eventDate"`
	} `json:"events"`
	Entities []struct {
		Roles      []string          `json:"roles"`
		VCardArray []json.RawMessage `json:"vcardArray"`
	} `json:"entities"`
	Nameservers []struct {
		LDHName string `json:"ldhName"`
	} `json:"nameservers"`
}

// lookupRDAP fetches the registration record of domain from the RDAP service
func (v *CompanyVerifier) lookupRDAP(ctx context.Context, domain string) (*registration, error) {
	page, err := v.fetcher.Get(ctx, strings.TrimRight(v.rdapURL, "/")+"/domain/"+domain)
	if err != nil {
		return nil, err
	}
	if page.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RDAP returned HTTP status %d", page.StatusCode)
	}

	var doc rdapDomain
	if err := json.Unmarshal(page.Body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode RDAP response: %w", err)
	}

	reg := &registration{nameservers: []string{}}
	for _, e := range doc.Events {
		t, err := time.Parse(time.RFC3339, e.Date)
		if err != nil {
			continue
		}
		switch e.Action {
		case "registration":
			reg.created = t
		case "expiration":
			reg.expires = t
		}
	}
	for _, e := range doc.Entities {
		for _, role := range e.Roles {
			if role == "registrar" && len(e.VCardArray) > 1 {
				reg.registrar = vcardName(e.VCardArray[1])
			}
		}
	}
	for _, ns := range doc.Nameservers {
		reg.nameservers = append(reg.nameservers, strings.ToLower(ns.LDHName))
	}
	return reg, nil
}

// vcardName returns the "fn" property of a jCard property list
func vcardName(raw json.RawMessage) string {
	var props [][]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return ""
	}
	for _, p := range props {
		if len(p) >= 4 && p[0] == "fn" {
			if name, ok := p[3].(string); ok {
				return name
			}
		}
	}
	return ""
}

// checkReputation probes the company site over HTTPS, then HTTP
func (v *CompanyVerifier) checkReputation(ctx context.Context, domain string) *types.DomainReputation {
	r := &types.DomainReputation{
		Domain:          domain,
		SecurityHeaders: map[string]bool{},
		RedirectChain:   []string{},
		ReputationScore: 50,
	}

	page, err := probeSite(ctx, v.fetcher, domain)
	if err != nil {
		r.Error = "site not reachable: " + err.Error()
		return r
	}

	r.PageAccessible = true
	r.SSLCertificate = page.Secure
	r.RedirectChain = page.Redirects
	r.SuspiciousRedirects = len(page.Redirects) > maxRedirectsOK
	present := 0
	for key, header := range securityHeaders {
		ok := page.Header.Get(header) != ""
		r.SecurityHeaders[key] = ok
		if ok {
			present++
		}
	}

	score := 50.0 + 20
	if r.SSLCertificate {
		score += 15
	}
	if !r.SuspiciousRedirects {
		score += 10
	}
	score += float64(present) / float64(len(securityHeaders)) * 5
	r.ReputationScore = min(100, max(0, score))
	return r
}

// probeSite fetches the home page of domain, trying HTTPS before HTTP when
// no scheme is given
func probeSite(ctx context.Context, f *Fetcher, domain string) (*Page, error) {
	candidates := []string{domain}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		candidates = []string{"https://" + domain, "http://" + domain}
	}

	var lastErr error
	for _, u := range candidates {
		page, err := f.Get(ctx, u)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}
