package handlers

import (
	"errors"
	"strconv"
)

const maxPageSize = 100

var errInvalidPagination = errors.New("invalid pagination parameters")

func parsePaginationParams(pageStr, sizeStr string) (int64, int64, error) {
	page := int64(1)
	pageSize := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if sizeStr != "" {
		s, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil || s < 1 {
			return 0, 0, errInvalidPagination
		}
		if s > maxPageSize {
			s = maxPageSize
		}
		pageSize = s
	}

	return page, pageSize, nil
}

func totalPages(total, pageSize int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
