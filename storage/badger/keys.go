package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/quarrylabs/corpus/core"
)

// Key prefixes for different data types
const (
	sourcePrefix       = "src"
	sourcePageMapping  = "srcpg"
	sourceIDSeq        = "srcseq"
	chunkPrefix        = "chk"
	chunkRecencyPrefix = "chkr"
	turnPrefix         = "trn"
	turnDatePrefix     = "trnd"
	turnIDSeq          = "trnseq"
)

// makeSourceKey generates a key for a source by kind and ID.
func makeSourceKey(kind core.SourceKind, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d:%d", sourcePrefix, kind, id))
}

// makePageMappingKey generates a composite key mapping a website to one of
// its pages. Format: prefix:websiteID:pageID, both BigEndian so iteration
// yields pages in insertion (crawl) order per website.
func makePageMappingKey(websiteID, pageID core.ID) []byte {
	prefix := sourcePageMapping + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(websiteID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(pageID))
	return buf
}

// makePartialPageMappingKey generates a partial key for listing the pages of
// one website.
func makePartialPageMappingKey(websiteID core.ID) []byte {
	prefix := sourcePageMapping + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(websiteID))
	return buf
}

// makeChunkKey generates the primary key for a chunk.
// Format: prefix:kind:sourceID:index with the numeric parts BigEndian so a
// prefix scan over one source yields chunks in index order.
func makeChunkKey(kind core.SourceKind, sourceID core.ID, index int) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+1+16)
	offset := copy(buf, prefix)
	buf[offset] = byte(kind)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeChunkKindPrefix generates a partial chunk key covering one source kind.
func makeChunkKindPrefix(kind core.SourceKind) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+1)
	offset := copy(buf, prefix)
	buf[offset] = byte(kind)
	return buf
}

// makeChunkSourcePrefix generates a partial chunk key covering one source.
func makeChunkSourcePrefix(kind core.SourceKind, sourceID core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = byte(kind)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	return buf
}

// makeChunkRecencyKey generates a composite key for the insertion-order
// index. Format: prefix:timestamp:kind:sourceID:index, timestamp BigEndian
// so lexicographic order is insertion order.
func makeChunkRecencyKey(insertedAt time.Time, kind core.SourceKind, sourceID core.ID, index int) []byte {
	prefix := chunkRecencyPrefix + ":"
	buf := make([]byte, len(prefix)+8+1+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(insertedAt.UnixMicro()))
	offset += 8
	buf[offset] = byte(kind)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkRecencyKey generates a partial recency key for seeking.
func makePartialChunkRecencyKey(insertedAt time.Time) []byte {
	prefix := chunkRecencyPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(insertedAt.UnixMicro()))
	return buf
}

// makeTurnKey generates a key for a conversation turn by ID.
func makeTurnKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", turnPrefix, id))
}

// makeTurnDateKey generates a composite key for the turn date index.
// Format: prefix:timestamp:id
func makeTurnDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := turnDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTurnDateKey generates a partial key for turn date seeks.
func makePartialTurnDateKey(timestamp time.Time) []byte {
	prefix := turnDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
