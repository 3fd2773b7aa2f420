package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/activityquery/internal/i18n"
	"github.com/roach88/activityquery/internal/lookup"
	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/sqltype"
)

// CampaignParams is the input of CampaignSearch.
type CampaignParams struct {
	Op        string
	Campaign  search.Value
	Grouping  string
	TableName string
}

// Pseudo ids the campaign selector offers next to real campaigns.
var campaignPseudoIDs = map[string]bool{
	"current_campaign": true,
	"past_campaign":    true,
}

// CampaignSearch filters TableName.campaign_id by the selected campaigns.
// Nothing is emitted for an empty selection or a missing table name.
func CampaignSearch(q *search.Query, p CampaignParams, campaigns lookup.Provider, tr *i18n.Translator) error {
	if p.Campaign.Empty() || p.TableName == "" {
		return nil
	}

	op := p.Op
	var ids []string
	if p.Campaign.IsSet() {
		for _, id := range p.Campaign.Selected() {
			if !campaignPseudoIDs[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		if len(ids) > 1 {
			op = OpIn
		}
	} else {
		ids = []string{p.Campaign.String()}
	}

	var titles []string
	for _, id := range ids {
		if title, ok := campaigns.CampaignTitle(id); ok {
			titles = append(titles, title)
		}
	}

	value := ids[0]
	if len(ids) > 1 {
		value = "(" + strings.Join(ids, ",") + ")"
	}
	where, err := Build(p.TableName+".campaign_id", op, value, sqltype.Integer)
	if err != nil {
		return fmt.Errorf("campaign search: %w", err)
	}

	normOp, _ := NormalizeOp(op)
	q.AddWhere(p.Grouping, where)
	qill := tr.T("Campaigns %s", normOp)
	if len(titles) > 0 {
		qill += " " + strings.Join(titles, " "+tr.T("or")+" ")
	}
	q.AddQill(p.Grouping, qill)
	q.RequireTables(p.TableName)
	return nil
}
