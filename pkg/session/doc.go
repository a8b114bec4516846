/*
Package session implements the persistent session store.

A Store holds one named, durable string value. It reads the value from a
ports.KeyValueStore once, asynchronously, and then serves it from an in-memory
mirror, so consumers only see the asynchrony of the storage medium until the
first load resolves. Writes go to durable storage first and reach the mirror
only when they succeed.

	store := session.NewStore(file.New(dir), "session")
	store.Initialize(ctx)
	if err := store.Wait(ctx); err != nil {
		return err
	}
	if v, ok := store.Value(); ok {
		// restore the signed-in user from v
	}
*/
package session
