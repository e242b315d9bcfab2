// Package services implements the HTTP clients behind a recipe import: the
// login handshake, the created-recipes API, and the image asset pipeline.
//
// # Session Negotiation
//
// [SessionNegotiator] implements [Authenticator] by performing the platform's
// three-phase cookie handshake: chase the entry redirect chain to the hosted
// login form, submit credentials as a form post, then chase the callback
// chain until the session cookies appear.
//
// Redirects are followed manually with [http.ErrUseLastResponse] because the
// platform sets cookies on intermediate 3xx responses that automatic
// following would skip. Every Set-Cookie along the way lands in a [CookieJar].
//
// [StaticAuthenticator] satisfies the same interface with a credential
// captured outside the handshake, typically pasted from a browser's
// copy-as-curl output.
//
// # Recipe API
//
// [CookidooClient] wraps the created-recipes endpoints: create, patch,
// delete, existence probe and upload signing. Responses that carry data are
// checked against embedded JSON schemas before decoding, so a drifted API
// surfaces as a validation error rather than a half-empty struct.
//
// # Image Assets
//
// [ImagePipeline] downloads the source recipe image, reads its pixel size
// straight from the PNG or JPEG header bytes, obtains a signed upload grant
// from the platform, and posts the file to the asset host as multipart form
// data.
//
// # Error Handling
//
// Failures carry typed errors from the shared package:
//   - [HandshakeError] : login handshake phase failures, wrapping [shared.ErrNetwork], [shared.ErrProtocol] or [shared.ErrAuthMissing]
//   - [APIError] : non-2xx API responses, wrapping [shared.ErrAPIRequest]
//   - [AssetError] : image pipeline failures, wrapping [shared.ErrAssetPipeline]
package services
