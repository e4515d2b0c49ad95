package scrycache

// Hooks receives high-signal cache events. Implementations must be cheap
// and non-blocking; the cache calls them inline on hot paths. Wrap with
// hooks/async to offload slow consumers.
type Hooks interface {
	// Resolve served the card from the local store or hot layer.
	LocalHit(sel Selector)

	// Resolve found no trustworthy local answer and will consult the
	// remote endpoint.
	LocalMiss(sel Selector)

	// A cached URL response was served without a network call.
	URLCacheHit(url string)

	// A remote GET is about to be issued on the TTL-cached path.
	RemoteFetch(url string)

	// A remote GET on the TTL-cached path failed. Soft: the resolver
	// reports not-found and the caller proceeds.
	RemoteFetchFailed(url string, err error)

	// A remotely fetched card was inserted into the permanent store.
	WriteBack(id string)

	// Bulk refresh lifecycle.
	RefreshStarted(datasetType string)
	RefreshFinished(datasetType string, cards int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) LocalHit(Selector)               {}
func (NopHooks) LocalMiss(Selector)              {}
func (NopHooks) URLCacheHit(string)              {}
func (NopHooks) RemoteFetch(string)              {}
func (NopHooks) RemoteFetchFailed(string, error) {}
func (NopHooks) WriteBack(string)                {}
func (NopHooks) RefreshStarted(string)           {}
func (NopHooks) RefreshFinished(string, int)     {}
