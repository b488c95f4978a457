package blog

import "math"

// PageRequest asks for one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// normalize clamps the request into range: pages below 1 become 1, a
// missing page size takes the default and an oversized one the maximum.
// Pages are capped so the offset of the last row fits in an int.
func (r PageRequest) normalize(defaultSize, maxSize int) PageRequest {
	if r.PageSize < 1 {
		r.PageSize = defaultSize
	}
	if r.PageSize > maxSize {
		r.PageSize = maxSize
	}
	if last := math.MaxInt/r.PageSize - 1; r.Page > last {
		r.Page = last
	}
	if r.Page < 1 {
		r.Page = 1
	}
	return r
}

// NormalizePage applies the service's page size defaults and limits to req
func (s *Service) NormalizePage(req PageRequest) PageRequest {
	return req.normalize(s.opts.DefaultPageSize, s.opts.MaxPageSize)
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.PageSize
}
