package rewrite

// Placement is the final query/body split for one upstream request.
// Body is nil for GET/DELETE regardless of what the caller supplied; the
// transport additionally refuses to send a body on those methods.
type Placement struct {
	Body  map[string]any
	Query map[string]any
}

// readMethod reports whether a method carries its parameters in the query
// string rather than a JSON body.
func readMethod(m Method) bool {
	return m == MethodGet || m == MethodDelete
}

// Place decides where the caller-supplied fields and the user identity
// travel for the resolved upstream method. Inputs are never mutated.
//
// When a logical write was converted to an upstream read (POST-with-filters
// served as GET-with-query-string), body fields migrate into the query;
// existing query keys are not overwritten.
func Place(target Target, logicalMethod Method, userID string, body, query map[string]any) Placement {
	finalQuery := make(map[string]any, len(query)+len(body)+1)
	for k, v := range query {
		finalQuery[k] = v
	}

	if readMethod(target.Method) {
		if !readMethod(logicalMethod) {
			for k, v := range body {
				if _, exists := finalQuery[k]; !exists {
					finalQuery[k] = v
				}
			}
		}
		finalQuery["user_id"] = userID
		return Placement{Body: nil, Query: finalQuery}
	}

	finalBody := make(map[string]any, len(body)+1)
	for k, v := range body {
		finalBody[k] = v
	}
	finalBody["user_id"] = userID
	if target.UserIDInQuery {
		finalQuery["user_id"] = userID
	}
	return Placement{Body: finalBody, Query: finalQuery}
}
