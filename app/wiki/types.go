package wiki

// Response envelopes for the MediaWiki Action API (format=json,
// formatversion=2). Only the fields the client reads are declared.

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type siteInfoResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Namespaces map[string]struct {
			ID        int    `json:"id"`
			Name      string `json:"name"`
			Canonical string `json:"canonical"`
		} `json:"namespaces"`
	} `json:"query"`
}

type allPagesResponse struct {
	Error    *apiError `json:"error"`
	Continue struct {
		APContinue string `json:"apcontinue"`
	} `json:"continue"`
	Query struct {
		AllPages []struct {
			PageID int64  `json:"pageid"`
			Title  string `json:"title"`
		} `json:"allpages"`
	} `json:"query"`
}

type pagesResponse struct {
	Error *apiError `json:"error"`
	// Continuation parameters to merge into the follow-up request. The
	// parameter names vary by prop, so the block stays untyped.
	Continue map[string]interface{} `json:"continue"`
	Query    struct {
		Pages []struct {
			PageID       int64  `json:"pageid"`
			Title        string `json:"title"`
			Missing      bool   `json:"missing"`
			CanonicalURL string `json:"canonicalurl"`
			Revisions    []struct {
				RevID int64 `json:"revid"`
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
}
