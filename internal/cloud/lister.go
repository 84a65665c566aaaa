package cloud

import (
	"context"
	"strings"

	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/logger"
)

// ListProducts lists prefix once and keeps the entries ending in suffix.
// Listing failures never surface: text matching one of benign means the
// prefix is empty or absent, anything else is logged as a warning. Both
// yield an empty result.
func ListProducts(ctx context.Context, p Provider, prefix, suffix string, benign []string, log *logger.Logger) []string {
	log.Infof("listing %s", prefix)

	entries, err := p.List(ctx, prefix)
	if err != nil {
		if tferrors.ContainsAny(err, benign) {
			log.Infof("no product folders under %s", prefix)
		} else {
			log.WarnWith("listing failed, treating as empty", err, map[string]interface{}{"prefix": prefix})
		}
		return nil
	}

	var products []string
	for _, e := range entries {
		if strings.HasSuffix(e, suffix) {
			products = append(products, e)
		}
	}

	if len(products) > 0 {
		log.Infof("found %d %s folders", len(products), strings.TrimSuffix(suffix, "/"))
	} else {
		log.Infof("no %s folders under %s", strings.TrimSuffix(suffix, "/"), prefix)
	}
	return products
}
