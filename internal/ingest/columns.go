package ingest

import "strings"

type column string

const (
	colDate        column = "date"
	colCampaign    column = "campaign"
	colAdSet       column = "adset"
	colAd          column = "ad"
	colImpressions column = "impressions"
	colReach       column = "reach"
	colClicks      column = "clicks"
	colMessages    column = "messages"
	colSpend       column = "spend"
	colRevenue     column = "revenue"
)

// NotSpecified fills text columns missing from an upload.
const NotSpecified = "Não especificado"

var requiredColumns = []column{
	colDate, colCampaign, colAdSet, colAd,
	colImpressions, colReach, colClicks, colMessages,
	colSpend, colRevenue,
}

// Header names accepted for each column, after trimming and lowercasing.
var columnAliases = map[string]column{
	"date": colDate, "data": colDate, "dia": colDate,
	"campaign": colCampaign, "campanha": colCampaign, "campaign_name": colCampaign,
	"adset": colAdSet, "conjunto": colAdSet, "ad_set": colAdSet, "adset_name": colAdSet,
	"ad": colAd, "anuncio": colAd, "anúncio": colAd, "ad_name": colAd,
	"impressions": colImpressions, "impressoes": colImpressions, "impressões": colImpressions,
	"reach": colReach, "alcance": colReach,
	"clicks": colClicks, "cliques": colClicks,
	"messages": colMessages, "mensagens": colMessages,
	"spend": colSpend, "gasto": colSpend, "custo": colSpend,
	"revenue": colRevenue, "receita": colRevenue, "valor": colRevenue,
}

// mapHeader returns the position of every recognised column. The first
// occurrence wins when two headers alias the same column.
func mapHeader(header []string) map[column]int {
	idx := make(map[column]int, len(requiredColumns))
	for i, h := range header {
		c, ok := columnAliases[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]
		if !ok {
			continue
		}
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}
