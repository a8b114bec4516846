/*
Package ports defines the driven ports (interfaces) of the fitpulse session client.

These interfaces decouple the session store and the auth layer from concrete
storage backends and user-facing feedback, so the same store can run over
device-local files, memory or a shared Redis instance.

# Key Interfaces

  - KeyValueStore: Durable string key-value storage (get, set, delete).
  - DistributedLocker: Cross-process locking for stores sharing one backend.
  - Notifier: Delivers success/failure feedback to whatever surface shows it.
*/
package ports
