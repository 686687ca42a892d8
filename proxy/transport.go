package proxy

import (
	"net/http"
	"sync"
	"time"
)

// Clients created for the same base address share one *http.Client for the
// process lifetime. The transport owns connection reuse and is safe for
// concurrent use; requests never outlive it.
var (
	sharedMu      sync.Mutex
	sharedClients = make(map[string]*http.Client)
)

func sharedHTTPClient(baseURL string) *http.Client {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if client, ok := sharedClients[baseURL]; ok {
		return client
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	sharedClients[baseURL] = client
	return client
}
