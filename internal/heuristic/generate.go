// Package heuristic implements the heuristic candidate generator (spec.md
// §4.2): a deterministic, bounded synthesis of plausible subdomain labels
// with no wordlist, used when the CLI is not given -f/--filename.
package heuristic

// services is the curated list of common subdomain service labels, ordered
// by how commonly they appear in the wild — this ordering is what makes
// Generate's output priority-ranked rather than arbitrary.
var services = []string{
	"www", "api", "admin", "cdn", "app", "mail", "static", "blog", "shop",
	"store", "dev", "test", "staging", "demo", "portal", "dashboard", "panel",
	"vpn", "ftp", "ns1", "ns2", "smtp", "pop", "imap", "webmail", "mx",
	"docs", "support", "help", "status", "monitor", "metrics", "grafana",
	"jenkins", "gitlab", "git", "ci", "cd", "build", "assets", "media",
	"images", "img", "video", "download", "downloads", "upload", "uploads",
	"cloud", "s3", "cache", "proxy", "gateway", "gw", "lb", "load",
	"auth", "login", "sso", "oauth", "secure", "payment", "pay",
}

// envs is the curated list of environment tags.
var envs = []string{"prod", "dev", "staging", "test", "demo", "qa", "uat"}

// regions is the curated list of region tags.
var regions = []string{"us", "eu", "cn", "ap", "uk", "jp", "in"}

// numbers is the curated list of numeric suffixes.
var numbers = []string{"1", "2", "01", "02", "2023", "2024", "2025"}

// Generate returns a deterministic, bounded, duplicate-free sequence of
// candidate FQDNs under apex, capped at max. The emission order is, per
// spec.md §4.2: bare service labels, then environment-prefixed, then
// region-prefixed, then numeric, then cross-joins — stable across runs and
// platforms because every input dictionary above is a fixed literal slice.
func Generate(apex string, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, max)

	emit := func(label string) bool {
		fqdn := label + "." + apex
		if _, dup := seen[fqdn]; dup {
			return len(out) < max
		}
		seen[fqdn] = struct{}{}
		out = append(out, fqdn)
		return len(out) < max
	}

	// 1. Bare service labels.
	for _, s := range services {
		if !emit(s) {
			return out
		}
	}

	// 2. Environment-prefixed: bare environment tags only. {env}-{service}
	// is a cross-join (bucket 5), not this bucket, per spec.md §4.2.
	for _, e := range envs {
		if !emit(e) {
			return out
		}
	}

	// 3. Region-prefixed: bare region tags only. {service}-{region} is a
	// cross-join (bucket 5).
	for _, r := range regions {
		if !emit(r) {
			return out
		}
	}

	// 4. Numeric suffixes.
	for _, n := range numbers {
		if !emit(n) {
			return out
		}
	}
	for _, n := range numbers {
		for _, s := range services {
			if !emit(s + n) {
				return out
			}
		}
	}

	// 5. Cross-joins: {service}-{env}, {service}-{region}, {env}-{service}.
	for _, s := range services {
		for _, e := range envs {
			if !emit(s + "-" + e) {
				return out
			}
		}
	}
	for _, s := range services {
		for _, r := range regions {
			if !emit(s + "-" + r) {
				return out
			}
		}
	}
	for _, e := range envs {
		for _, s := range services {
			if !emit(e + "-" + s) {
				return out
			}
		}
	}

	return out
}

// PoolSize returns the total number of unique labels Generate can ever
// produce for a given apex, i.e. the size of the deduplicated dictionary
// product before the max cap is applied. Property tests use this to assert
// Generate(apex, N) returns exactly min(N, PoolSize()) entries.
func PoolSize() int {
	seen := make(map[string]struct{})
	count := func(label string) {
		seen[label] = struct{}{}
	}
	for _, s := range services {
		count(s)
	}
	for _, e := range envs {
		count(e)
	}
	for _, e := range envs {
		for _, s := range services {
			count(e + "-" + s)
		}
	}
	for _, r := range regions {
		count(r)
	}
	for _, r := range regions {
		for _, s := range services {
			count(s + "-" + r)
		}
	}
	for _, n := range numbers {
		count(n)
	}
	for _, n := range numbers {
		for _, s := range services {
			count(s + n)
		}
	}
	for _, s := range services {
		for _, e := range envs {
			count(s + "-" + e)
		}
	}
	for _, s := range services {
		for _, r := range regions {
			count(s + "-" + r)
		}
	}
	return len(seen)
}
