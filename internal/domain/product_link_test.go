package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineageJSONShape(t *testing.T) {
	lineage := Lineage{
		MainCategoryLink:    "https://www.baslerweb.com/en-us/cameras/",
		SubCategoryLink:     "https://www.baslerweb.com/en-us/cameras/area-scan/",
		ProductCategoryLink: NotApplicable,
	}

	data, err := json.Marshal(lineage)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"main category link": "https://www.baslerweb.com/en-us/cameras/"},
		{"Sub category link": "https://www.baslerweb.com/en-us/cameras/area-scan/"},
		{"Prod category link": "N/A"}
	]`, string(data))

	var decoded Lineage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, lineage, decoded)
}

func TestLineageRejectsUnknownLabel(t *testing.T) {
	var lineage Lineage
	err := json.Unmarshal([]byte(`[{"brand link":"x"}]`), &lineage)
	assert.Error(t, err)
}

func TestProductLinkJSON(t *testing.T) {
	link := ProductLink{
		ProductLink: "https://www.baslerweb.com/en-us/shop/cam-x",
		Lineage:     Lineage{MainCategoryLink: "m", SubCategoryLink: "s", ProductCategoryLink: "p"},
	}

	data, err := json.Marshal(link)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product_link": "https://www.baslerweb.com/en-us/shop/cam-x",
		"metadata": [{"main category link":"m"},{"Sub category link":"s"},{"Prod category link":"p"}]
	}`, string(data))
}

func TestSaveResultString(t *testing.T) {
	assert.Equal(t, "inserted", SaveResultInserted.String())
	assert.Equal(t, "duplicate", SaveResultDuplicate.String())
}
