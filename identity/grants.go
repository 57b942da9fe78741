package identity

// GrantEvaluator decides whether a client may be granted the scopes it asked
// for. Pure function of the registry plus the request; no side effects.
type GrantEvaluator struct {
	registry *Registry
}

func NewGrantEvaluator(registry *Registry) *GrantEvaluator {
	return &GrantEvaluator{registry: registry}
}

// Evaluate returns the granted scopes, which on success are exactly the
// requested scopes. Partial grants are not permitted: a single disallowed
// scope rejects the whole request so clients never silently receive a
// narrower grant than they asked for.
func (e *GrantEvaluator) Evaluate(clientID, grantType string, requestedScopes []string) ([]string, error) {
	client, ok := e.registry.Client(clientID)
	if !ok {
		return nil, ErrUnknownClient.Clone().
			WithMetadata(map[string]any{"client_id": clientID})
	}

	if !client.AllowsGrantType(grantType) {
		return nil, ErrGrantTypeNotAllowed.Clone().
			WithMetadata(map[string]any{
				"client_id":  clientID,
				"grant_type": grantType,
			})
	}

	for _, scope := range requestedScopes {
		if !client.AllowsScope(scope) {
			return nil, ErrScopeNotAllowed.Clone().
				WithMetadata(map[string]any{
					"client_id": clientID,
					"scope":     scope,
				})
		}
	}

	granted := make([]string, len(requestedScopes))
	copy(granted, requestedScopes)

	return granted, nil
}
