package cds

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Upstream fetches one resource or search bundle from the EHR's FHIR server.
// fhir.Client satisfies it.
type Upstream interface {
	Get(ctx context.Context, base, path, tokenType, accessToken string) (any, error)
}

// PrefetchResult is the resolved prefetch for one hook invocation. Data holds
// an entry for every key the service declares; a key that could not be
// satisfied maps to nil. Errors carries a message per failed key. Complete is
// true only when every declared key resolved to a non-nil value.
type PrefetchResult struct {
	Data     map[string]any
	Errors   map[string]string
	Complete bool
}

// HookContext is the fully resolved input to the rule engines: the original
// request, the prefetch data, and the human-readable warnings accumulated
// while resolving it.
type HookContext struct {
	Request  *HookRequest
	Prefetch PrefetchResult
	Warnings []string
}

var contextToken = regexp.MustCompile(`\{\{context\.([A-Za-z0-9_]+)\}\}`)

// expandTemplate substitutes {{context.field}} tokens in a prefetch template
// with values from the request context. Missing fields expand to "".
func expandTemplate(template string, req *HookRequest) string {
	return contextToken.ReplaceAllStringFunc(template, func(m string) string {
		field := contextToken.FindStringSubmatch(m)[1]
		return req.ContextString(field)
	})
}

// Resolver fills in the prefetch a service declares but the caller did not
// supply, fetching the missing keys concurrently from the request's FHIR
// server.
type Resolver struct {
	upstream Upstream
}

func NewResolver(upstream Upstream) *Resolver {
	return &Resolver{upstream: upstream}
}

// Resolve produces the prefetch for one invocation of the given service.
//
// Caller-supplied non-null prefetch values are trusted verbatim and never
// re-fetched. Keys the caller omitted (or supplied as null) are fetched from
// the request's fhirServer when one is given; without a fhirServer they stay
// null and no error is recorded, since the caller simply chose not to grant
// access. Each fetch failure nulls its own key and records an error without
// disturbing the others.
func (r *Resolver) Resolve(ctx context.Context, req *HookRequest, serviceID string) PrefetchResult {
	result := PrefetchResult{
		Data:   make(map[string]any),
		Errors: make(map[string]string),
	}

	def, ok := LookupService(serviceID)
	if !ok {
		result.Errors["service"] = fmt.Sprintf("unknown service %q", serviceID)
		return result
	}

	var missing []string
	for key := range def.Prefetch {
		if supplied, ok := req.Prefetch[key]; ok && supplied != nil {
			result.Data[key] = supplied
			continue
		}
		result.Data[key] = nil
		missing = append(missing, key)
	}

	if len(missing) == 0 {
		result.Complete = true
		return result
	}

	if req.FHIRServer == "" {
		return result
	}

	tokenType, accessToken := "", ""
	if req.FHIRAuthorization != nil {
		tokenType = req.FHIRAuthorization.TokenType
		accessToken = req.FHIRAuthorization.AccessToken
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, key := range missing {
		path := expandTemplate(def.Prefetch[key], req)
		wg.Add(1)
		go func(key, path string) {
			defer wg.Done()
			value, err := r.upstream.Get(ctx, req.FHIRServer, path, tokenType, accessToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[key] = err.Error()
				return
			}
			result.Data[key] = value
		}(key, path)
	}
	wg.Wait()

	result.Complete = true
	for _, v := range result.Data {
		if v == nil {
			result.Complete = false
			break
		}
	}
	return result
}

// BuildHookContext resolves prefetch and folds the outcome into the warning
// lines the handler surfaces on the response.
func (r *Resolver) BuildHookContext(ctx context.Context, req *HookRequest, serviceID string) HookContext {
	result := r.Resolve(ctx, req, serviceID)

	var warnings []string
	keys := make([]string, 0, len(result.Errors))
	for k := range result.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "service" {
			warnings = append(warnings, result.Errors[k])
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Failed to fetch %s: %s", k, result.Errors[k]))
	}

	if !result.Complete {
		var unresolved []string
		for k, v := range result.Data {
			if v == nil {
				unresolved = append(unresolved, k)
			}
		}
		sort.Strings(unresolved)
		if len(unresolved) > 0 {
			warnings = append(warnings, fmt.Sprintf("Evaluated without prefetch data for: %s", strings.Join(unresolved, ", ")))
		}
	}

	return HookContext{Request: req, Prefetch: result, Warnings: warnings}
}
