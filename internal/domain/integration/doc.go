// Package integration contains the canonical model and ports of the marketplace
// synchronization engine: canonical orders and products, durable mapping
// records between remote and local identities, the status translator, the
// sync log, and the interfaces through which the engine talks to
// marketplace APIs and the host commerce system.
//
// The package holds types and pure logic only. Concrete marketplace
// adapters and persistence implementations live in the infrastructure
// layer; the import pipelines and the webhook reconciler live in the
// application layer.
package integration
