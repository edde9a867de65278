package service

import (
	"sync"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// PeerCache keeps resolved peers per source id for the lifetime of the process
type PeerCache struct {
	mu    sync.RWMutex
	peers map[int64]domain.Peer
}

func NewPeerCache() *PeerCache {
	return &PeerCache{peers: make(map[int64]domain.Peer)}
}

func (c *PeerCache) Get(sourceID int64) (domain.Peer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	peer, ok := c.peers[sourceID]
	return peer, ok
}

func (c *PeerCache) Put(sourceID int64, peer domain.Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[sourceID] = peer
}

func (c *PeerCache) Forget(sourceID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, sourceID)
}
