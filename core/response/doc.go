// Package response provides handler.Response constructors for the server-side
// wrapper: JSON bodies, redirects, structured HTTP errors and relaying answers
// from the identity API back to the browser.
//
//	return response.JSON(acct)
//	return response.Redirect("/", http.StatusFound)
//	return response.Forward(apiResp) // status, body and Set-Cookie headers
//	return handler.Error(response.ErrBadRequest.WithMessage("email is required"))
//
// Errors rendered by JSONErrorHandler become {"code","message","details"}
// bodies. A *client.Error keeps the API's status and errorMessage.
package response
