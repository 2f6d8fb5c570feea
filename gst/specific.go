package gst

import "strings"

type specificItem struct {
	name    string
	hsnCode string
	gstRate float64
}

// Named products with a known classification. Checked in order.
var specificItems = []specificItem{
	{name: "mobile phone", hsnCode: "8517", gstRate: 18},
	{name: "television", hsnCode: "8528", gstRate: 28},
	{name: "air conditioner", hsnCode: "8415", gstRate: 28},
	{name: "refrigerator", hsnCode: "8418", gstRate: 28},
	{name: "washing machine", hsnCode: "8450", gstRate: 28},
	{name: "parle-g", hsnCode: "1905", gstRate: 18},
	{name: "britannia", hsnCode: "1905", gstRate: 18},
}

func lookupSpecificItem(description string) (specificItem, bool) {
	desc := strings.ToLower(description)
	for _, it := range specificItems {
		if strings.Contains(desc, it.name) {
			return it, true
		}
	}
	return specificItem{}, false
}
