package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently maps keys onto stripe indices. Every stripe owns
// replicas points on a murmur3 hash circle and a key belongs to the first
// point at or after its own hash.
type ring struct {
	points *treemap.Map

	// first caches the stripe owning the lowest point, where keys hashing
	// past the last point wrap around to
	first int
}

func newRing(stripes, replicas uint) *ring {
	if stripes == 0 {
		stripes = 1
	}
	if replicas == 0 {
		replicas = 1
	}

	points := treemap.NewWith(utils.Int64Comparator)

	var seed [12]byte
	for stripe := uint(0); stripe < stripes; stripe++ {
		binary.BigEndian.PutUint32(seed[:4], uint32(stripe))
		for replica := uint(0); replica < replicas; replica++ {
			binary.BigEndian.PutUint64(seed[4:], uint64(replica))
			points.Put(int64(murmur3.Sum64(seed[:])), int(stripe))
		}
	}

	_, first := points.Min()

	return &ring{
		points: points,
		first:  first.(int),
	}
}

func (r *ring) shard(key []byte) int {
	if _, stripe := r.points.Ceiling(int64(murmur3.Sum64(key))); stripe != nil {
		return stripe.(int)
	}
	return r.first
}
