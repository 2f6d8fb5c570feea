package client

import (
	"encoding/json"
	"fmt"
)

const enhancePrompt = `The following text was extracted using OCR from an invoice.
Please fix any obvious OCR errors, normalize formatting, and return the corrected text only.
Keep one invoice line per output line.

%s`

const extractPrompt = `Extract the line items from this invoice text.
For each item, provide:
- item: The name/description of the item
- qty: The quantity purchased
- unit_price: The price per unit
- total: The total price for this item (qty * unit_price)

Return a JSON object of the form {"items": [...]}. If you can't extract all fields for an item,
make reasonable estimates based on the available information. Do not include tax, discount or total rows.

Invoice text:
%s`

const suggestPrompt = `For each of the following product descriptions, suggest the most appropriate HSN code and GST rate.
Return the results as a JSON object where the keys are the item descriptions exactly as given and the values are
objects containing the hsn_code (string) and gst_rate (number, percent).

Item descriptions:
%s

Consider common HSN codes used in India:
- 1905: Bread, pastry, cakes, biscuits (18%%)
- 2106: Food preparations (18%%)
- 3004: Medicaments (12%%)
- 3304: Beauty or make-up preparations (28%%)
- 3401: Soap, organic surface-active products (18%%)
- 3402: Washing and cleaning preparations (18%%)
- 3923: Plastic articles for packaging (18%%)
- 4819: Cartons, boxes, cases, bags of paper (18%%)
- 8415: Air conditioning machines (28%%)
- 8508: Vacuum cleaners (28%%)
- 8516: Electric heating equipment (28%%)
- 8517: Telephones, smartphones (18%%)
- 8528: Monitors and projectors, TV receivers (28%%)`

func buildSuggestPrompt(descriptions []string) (string, error) {
	list, err := json.Marshal(descriptions)
	if err != nil {
		return "", fmt.Errorf("failed to encode descriptions: %w", err)
	}
	return fmt.Sprintf(suggestPrompt, list), nil
}
