package engine

// ResolveOwner derives a domain's owner from its enclaves. It returns false when the
// domain has no enclaves, when any enclave is neutral, or when owners differ.
func ResolveOwner(domain DomainID, enclaves map[EnclaveID]*Enclave) (PlayerID, bool) {
	owner := Neutral
	found := false
	for _, e := range enclaves {
		if e.Domain != domain {
			continue
		}
		if e.Owner == Neutral {
			return Neutral, false
		}
		if found && e.Owner != owner {
			return Neutral, false
		}
		owner, found = e.Owner, true
	}
	return owner, found
}

// ResolveOwnership derives the owner of every domain. Contested and empty domains are
// left out of the result.
func ResolveOwnership(domains map[DomainID]*Domain, enclaves map[EnclaveID]*Enclave) map[DomainID]PlayerID {
	owners := make(map[DomainID]PlayerID, len(domains))
	for id := range domains {
		if owner, ok := ResolveOwner(id, enclaves); ok {
			owners[id] = owner
		}
	}
	return owners
}
