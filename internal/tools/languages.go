package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

type language struct {
	Code string
	ID   string
	Name string
}

// languages are the common language constants, keyed by ISO code.
var languages = []language{
	{"en", "1000", "English"},
	{"es", "1003", "Spanish"},
	{"fr", "1002", "French"},
	{"de", "1001", "German"},
	{"it", "1004", "Italian"},
	{"pt", "1014", "Portuguese"},
	{"nl", "1010", "Dutch"},
	{"ja", "1005", "Japanese"},
	{"zh", "1017", "Chinese (simplified)"},
	{"zh-TW", "1018", "Chinese (traditional)"},
	{"ko", "1012", "Korean"},
	{"ar", "1019", "Arabic"},
	{"ru", "1031", "Russian"},
	{"pl", "1030", "Polish"},
	{"tr", "1037", "Turkish"},
	{"sv", "1015", "Swedish"},
	{"no", "1013", "Norwegian"},
	{"da", "1009", "Danish"},
	{"fi", "1011", "Finnish"},
	{"he", "1027", "Hebrew"},
	{"hi", "1023", "Hindi"},
	{"th", "1044", "Thai"},
	{"vi", "1040", "Vietnamese"},
	{"id", "1025", "Indonesian"},
	{"ms", "1102", "Malay"},
	{"cs", "1021", "Czech"},
	{"hu", "1024", "Hungarian"},
	{"ro", "1032", "Romanian"},
	{"sk", "1033", "Slovak"},
	{"bg", "1020", "Bulgarian"},
	{"hr", "1039", "Croatian"},
	{"sr", "1035", "Serbian"},
	{"sl", "1034", "Slovenian"},
	{"uk", "1036", "Ukrainian"},
	{"el", "1022", "Greek"},
}

func lookupLanguage(code string) (language, bool) {
	for _, l := range languages {
		if strings.EqualFold(l.Code, code) {
			return l, true
		}
	}
	return language{}, false
}

// languageArg is a language given as an ISO code ("en"), a language
// constant id ("1000") or {"id"|"language_id", "name"}.
type languageArg struct {
	ID   string
	Name string
}

func (l *languageArg) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if lang, ok := lookupLanguage(s); ok {
			*l = languageArg{ID: lang.ID, Name: lang.Name}
			return nil
		}
		if _, err := gaql.ID(s); err == nil {
			*l = languageArg{ID: s}
			return nil
		}
		return fmt.Errorf("Unknown language code: %s. Use language ID or common codes like 'en', 'es', 'fr'", s)
	}
	var obj struct {
		ID         ID     `json:"id"`
		LanguageID ID     `json:"language_id"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("Each language must be a string code or object with 'id' field")
	}
	*l = languageArg{ID: string(obj.ID), Name: obj.Name}
	if l.ID == "" {
		l.ID = string(obj.LanguageID)
	}
	return nil
}

func (l languageArg) String() string {
	if l.Name != "" {
		return l.Name
	}
	return "Language ID: " + l.ID
}

type languageTargetsTool struct{ env *Env }

// AddLanguageTargets constructs the add_language_targets tool.
func AddLanguageTargets(env *Env) *languageTargetsTool { return &languageTargetsTool{env: env} }

func (t *languageTargetsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "add_language_targets",
		Description: "Restrict a campaign to specific languages. Languages are ISO codes ('en'), language IDs ('1000') or {id, name} objects; see list_available_languages.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Campaign ID"},
			"languages":   {Type: "array", Items: &protocol.JSONSchema{Type: "string"}, Description: "Language codes or IDs"},
		}, "campaign_id", "languages"),
	}
}

func (t *languageTargetsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID ID                `json:"campaign_id"`
		Languages  []json.RawMessage `json:"languages"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	campaignID, err := gaql.ID(string(args.CampaignID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Campaign ID is required")
	}
	if len(args.Languages) == 0 {
		return protocol.CallResult{}, invalidArgs("Languages array is required and must not be empty")
	}
	langs := make([]languageArg, 0, len(args.Languages))
	for _, raw := range args.Languages {
		var l languageArg
		if err := json.Unmarshal(raw, &l); err != nil {
			return protocol.CallResult{}, invalidArgs(err.Error())
		}
		if _, err := gaql.ID(l.ID); err != nil {
			return protocol.CallResult{}, invalidArgs("Each language must be a string code or object with 'id' field")
		}
		langs = append(langs, l)
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	campaign, err := t.env.campaignRow(ctx, cid, campaignID)
	if err != nil {
		return t.env.failure("adding language targets", err)
	}
	if campaign == nil {
		return notFound("Campaign " + campaignID)
	}
	campaignName := campaign.String("campaign.name")

	campaignRN := googleads.ResourceName(cid, "campaigns", campaignID)
	ops := make([]googleads.Operation, 0, len(langs))
	names := make([]string, 0, len(langs))
	for _, l := range langs {
		ops = append(ops, googleads.Operation{
			Entity: googleads.EntityCampaignCriterion,
			Create: map[string]any{
				"campaign": campaignRN,
				"language": map[string]any{"languageConstant": "languageConstants/" + l.ID},
				"negative": false,
			},
		})
		names = append(names, l.String())
	}
	list := bulletList(names)

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityCampaignCriterion,
		action:  "adding language targets",
		title:   "Language Targeting",
		name:    campaignName,
		changes: []mutate.Change{mutate.Text("languages", "All languages", fmt.Sprintf("%d specific languages", len(ops)))},
		details: "Languages to target:\n" + list,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Language targeting added successfully!\n\nCampaign: %s\nLanguages added: %d\n\n%s", campaignName, len(ops), list))
}

type listLanguagesTool struct{}

// ListAvailableLanguages constructs the list_available_languages tool.
func ListAvailableLanguages() *listLanguagesTool { return &listLanguagesTool{} }

func (t *listLanguagesTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "list_available_languages",
		Description: "List common language codes and IDs for language targeting.",
		InputSchema: &protocol.JSONSchema{Type: "object", Properties: map[string]protocol.JSONSchema{}},
	}
}

func (t *listLanguagesTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var b strings.Builder
	b.WriteString("🌐 Available Languages for Targeting:\n\n")
	for _, l := range languages {
		fmt.Fprintf(&b, "• %s (code: %s, ID: %s)\n", l.Name, l.Code, l.ID)
	}
	b.WriteString(`
To target languages, use either:
1. Language codes: ['en', 'es', 'fr']
2. Language IDs: ['1000', '1003', '1002']
3. Mixed: ['en', '1003', { id: '1002', name: 'French' }]

Note: These are the most common languages. Google Ads supports many more.
For a complete list, check the Google Ads UI or API documentation.`)
	return textResult(b.String())
}
