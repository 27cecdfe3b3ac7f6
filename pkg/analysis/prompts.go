package analysis

// BrandPrompt asks the vision model to identify the brand of the item
// shown in a sub-region crop
const BrandPrompt = `You are a luxury goods brand identifier.

Return JSON only:
{
  "brand_name": "string",
  "product_name": "string",
  "confidence": 0.0
}

HARD RULES
- confidence is in [0,1] and reflects how certain you are of the brand.
- brand_name is the official brand name (e.g. "Louis Vuitton", "Gucci").
- product_name is the product line or model if recognizable, else "".
- Judge only from visible logos, monograms, hardware and stitching.
- Do not guess from style alone; uncertain means low confidence.
- If no brand is identifiable, return:
  {"brand_name":"Unknown Brand","product_name":"","confidence":0.0}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// authenticityPromptTemplate asks the vision model for a counterfeit
// assessment of the item, given the identified brand as context
const authenticityPromptTemplate = `You are a counterfeit detection expert examining an item identified as "%s".

Return JSON only:
{
  "probability": 0.0,
  "verdict": "authentic|uncertain|counterfeit",
  "overall_assessment": "2-3 sentence summary of your judgement",
  "findings": ["specific observation 1", "specific observation 2"]
}

HARD RULES
- probability is in [0,1]: the likelihood the item is GENUINE.
- verdict must be exactly one of: authentic, uncertain, counterfeit.
- Findings are concrete, visible evidence: stitching, logo spacing,
  hardware finish, font weight, material grain, serial placement.
- List at least 2 findings when any detail is visible.
- Do not pad probability toward the middle; commit when evidence is clear.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// translationPromptTemplate asks the text model for a plain translation
// of the assessment summary
const translationPromptTemplate = `Translate the following product authenticity assessment into %s.

Return only the translated text. No quotes, no commentary, no romanization.

Text:
%s`
