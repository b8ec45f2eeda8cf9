// Package pagination carries page requests and cursors between the
// HTTP layer and repositories.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

const DefaultPageSize = 50

type Pagination struct {
	PageToken string
	PageSize  int32
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	TotalSize     int64  `json:"total_size,omitempty"`
}

// Offset decodes the page token; an empty or malformed token starts
// from the beginning.
func (p Pagination) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	raw, err := base64.URLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return int(p.PageSize)
}

func EncodeToken(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf("%d", offset)))
}
