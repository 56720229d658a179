package types

// CredentialSet maps an entitlement type to its bearer resource
// credential. One credential per entitled entitlement; entries for
// non-entitled or removed entitlements are pruned on reconcile.
type CredentialSet map[string]string

// Clone returns an independent copy of the set.
func (c CredentialSet) Clone() CredentialSet {
	out := make(CredentialSet, len(c))
	for entType, secret := range c {
		out[entType] = secret
	}
	return out
}
