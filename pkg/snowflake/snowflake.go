// Package snowflake issues order numbers for completed checkouts.
package snowflake

import (
	"hash/fnv"
	"os"
	"sync"

	bwsnowflake "github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *bwsnowflake.Node
)

// SetNodeID pins the node ID (0-1023). A negative id derives it from the hostname.
func SetNodeID(id int64) error {
	if id < 0 {
		id = hostNodeID()
	}
	n, err := bwsnowflake.NewNode(id & 0x3FF)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func hostNodeID() int64 {
	host, _ := os.Hostname()
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return int64(h.Sum32()) & 0x3FF
}

func current() *bwsnowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		n, err := bwsnowflake.NewNode(hostNodeID())
		if err != nil {
			// fallback to node 1
			n, _ = bwsnowflake.NewNode(1)
		}
		node = n
	}
	return node
}

// Next returns a new order id in its decimal string form.
func Next() string {
	return current().Generate().String()
}
