// Package manual implements the manual retention strategy: entries live
// until they are explicitly invalidated, cleared or the store is disposed.
package manual

import "github.com/IvanBrykalov/asynccache/policy"

type manual struct{ policy.Base }

// New returns a policy that never evicts on its own.
func New() policy.Policy { return manual{} }

func (manual) Name() string { return "manual" }
