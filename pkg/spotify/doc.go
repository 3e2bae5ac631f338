// Package spotify is a client for the Spotify Web API.
//
// Entities returned by list and search endpoints are simplified. Reading an
// attribute they lack, through the context-taking accessors, fetches the full
// representation once and fills in every field:
//
//	album, _ := results.Items[0].(*spotify.Album)
//	pop, err := album.Popularity(ctx) // one GET albums/<id>
//	label, err := album.Label(ctx)    // no request
//
// Large collections are returned as a *Page that loads adjacent pages on
// demand. Page.All walks the whole collection explicitly.
//
// Requests made on behalf of a user carry the access token stored for that
// user in the CredentialStore. An expired token is refreshed once and the
// request retried once.
package spotify
