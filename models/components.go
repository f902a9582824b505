package models

// NutrientComponent is a row of the komponen_gizi dictionary.
type NutrientComponent struct {
	ID   int64  `db:"id"`
	Name string `db:"nama"`
	Unit string `db:"satuan"`
}

// NutrientComponents is the fixed dictionary of TKPI nutrient columns and
// their units. Names match the Header entries they describe.
var NutrientComponents = []NutrientComponent{
	{Name: "Air", Unit: "g"},
	{Name: "Energi", Unit: "kcal"},
	{Name: "Protein", Unit: "g"},
	{Name: "Lemak", Unit: "g"},
	{Name: "Karbohidrat", Unit: "g"},
	{Name: "Serat", Unit: "g"},
	{Name: "Abu", Unit: "g"},
	{Name: "Kalsium (Ca)", Unit: "mg"},
	{Name: "Fosfor (P)", Unit: "mg"},
	{Name: "Besi (Fe)", Unit: "mg"},
	{Name: "Natrium (Na)", Unit: "mg"},
	{Name: "Kalium (Ka)", Unit: "mg"},
	{Name: "Tembaga (Cu)", Unit: "mg"},
	{Name: "Seng (Zn)", Unit: "mg"},
	{Name: "Retinol (vit. A)", Unit: "mcg"},
	{Name: "β-karoten", Unit: "mcg"},
	{Name: "Karoten total", Unit: "mcg"},
	{Name: "Thiamin (vit. B1)", Unit: "mg"},
	{Name: "Riboflavin (vit. B2)", Unit: "mg"},
	{Name: "Niasin", Unit: "mg"},
	{Name: "Vitamin C", Unit: "mg"},
}
