/*
Package auth bridges the persistent session store to the remote authentication endpoint.

Client speaks the backend's login and registration endpoints. Session composes a
Client with a session.Store: a successful sign-in stores the encoded domain.User,
sign-out clears it, and every failure is reported once through a ports.Notifier
while the store is left untouched.
*/
package auth
