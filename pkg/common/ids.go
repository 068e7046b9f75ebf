package common

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		// Node id may be set per instance when running more than one replica.
		nodeID := cast.ToInt64(os.Getenv("BOOKSTORE_NODE_ID")) % 1024
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a new snowflake id.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// GenerateOrderNumber builds a human-facing order number. Snowflake ids are
// monotonically increasing, so later orders always sort after earlier ones.
func GenerateOrderNumber() string {
	id := node().Generate()
	return fmt.Sprintf("ORD%s-%s", time.Now().Format("20060102"), strings.ToUpper(id.Base36()))
}
