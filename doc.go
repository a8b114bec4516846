/*
Package fitpulse keeps a fitness-tracking client signed in across restarts.

It combines a persistent session store (one named value in durable storage,
loaded asynchronously with an observable loading flag) with an auth layer that
exchanges credentials for a bearer token against the backend and keeps the
result in that store.

# Usage

	client, err := fitpulse.New("http://10.0.2.2:3000",
		fitpulse.WithKeyValueStore(file.New(".fitpulse/store")),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Wait(ctx); err != nil {
		log.Fatal(err)
	}

	if client.Session().CurrentUser() == nil {
		if err := client.SignIn(ctx, "me@example.com", "secret"); err != nil {
			log.Fatal(err)
		}
	}

	hc, err := client.HTTPClient(ctx) // sends "Authorization: Bearer <token>"

Storage is pluggable through ports.KeyValueStore: memory, file and redis
adapters ship with the module, and values can be encrypted at rest with
middleware.NewEncryptionMiddleware.
*/
package fitpulse
