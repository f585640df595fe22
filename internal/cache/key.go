package cache

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Namespace groups related cached responses so they can be invalidated
// together when the underlying entities change.
type Namespace string

const (
	NamespaceTransaction Namespace = "transaction"
	NamespaceUser        Namespace = "user"
	NamespaceAnalytics   Namespace = "analytics"
	NamespaceSystem      Namespace = "system"
)

// maxParamSegment bounds the encoded parameter segment; anything longer is
// collapsed to a content hash so keys never grow unbounded with param count.
const maxParamSegment = 100

// Key derives a deterministic cache key of the form
// namespace[:prefix][:identifier][:k1_v1:k2_v2...]. Params are sorted by name
// so the key is invariant under map iteration order; empty values are
// skipped.
//
// Example outputs:
//
//	transaction:single:123
//	user:list:limit_20:skip_0
//	analytics:user:456
func Key(ns Namespace, prefix, identifier string, params map[string]string) string {
	parts := []string{string(ns)}

	if prefix != "" {
		parts = append(parts, prefix)
	}

	if identifier != "" {
		parts = append(parts, identifier)
	}

	if len(params) > 0 {
		names := make([]string, 0, len(params))

		for name, value := range params {
			if value == "" {
				continue
			}

			names = append(names, name)
		}

		sort.Strings(names)

		paramParts := make([]string, 0, len(names))
		for _, name := range names {
			paramParts = append(paramParts, name+"_"+params[name])
		}

		if len(paramParts) > 0 {
			segment := strings.Join(paramParts, ":")
			if len(segment) > maxParamSegment {
				segment = fmt.Sprintf("%x", md5.Sum([]byte(segment)))
			}

			parts = append(parts, segment)
		}
	}

	return strings.Join(parts, ":")
}
