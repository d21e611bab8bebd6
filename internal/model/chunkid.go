package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ChunkID deterministically derives an EntityChunk's id from its identity
// fields. The same (file, entity, chunk type, line range) always yields the
// same id, so re-parsing an unchanged file reproduces identical chunk ids
// and downstream stores can diff by id rather than by content.
func ChunkID(filePath string, entityType EntityType, entityName string, chunkType ChunkType, startLine, endLine int) string {
	prefix := fmt.Sprintf("%s::%s::%s::%s", filePath, entityType, entityName, chunkType)
	digestInput := fmt.Sprintf("%s::%d::%d", prefix, startLine, endLine)
	sum := md5.Sum([]byte(digestInput))
	return prefix + "::" + hex.EncodeToString(sum[:])[:16]
}
