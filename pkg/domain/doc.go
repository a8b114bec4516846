/*
Package domain contains the core domain models of the fitpulse session client.

It defines the authenticated identity held by the client, the load state of the
persistent session value, and the sentinel errors shared by stores and adapters.
This package is kept free of I/O and persistence concerns.

# Key Entities

  - User: The session token (bearer token + numeric user id) the client currently holds.
  - LoadState: Whether the persisted session value is still being read (Loading) or available (Ready).
*/
package domain
