package router

// Prompt templates for classification and per-archetype extraction. Every
// extraction prompt funnels to the same JSON unit-record shape so parsing
// stays uniform regardless of which strategy produced the output.

const classifySystemPrompt = `You classify rental-property web pages into exactly one archetype.
Respond with only one of these labels and nothing else:
single_property_site, multi_listing_aggregator, property_manager, brokerage, unknown`

const classifyUserPromptTemplate = `URL: %s

Page content (truncated):
%s

Which archetype is this page?`

const unitRecordSchema = `Respond with a JSON array of unit objects. Each object has these keys:
"title" (string), "address" (string), "price" (number, monthly rent in USD),
"bedrooms" (number), "bathrooms" (number), "sqft" (integer),
"available" (boolean), "amenities" (array of strings),
"concession_text" (string, verbatim promotional text or empty),
"lease_term_months" (integer, 0 if not stated).
Respond with the JSON array only, no prose. An empty array [] is valid when
the page lists no rentable units.`

const singlePropertySystemPrompt = `You extract rental unit data from a single-property marketing site.
The page describes one building; extract every unit or floor plan it advertises.
Pull the concession text verbatim from any promotional banner or special-offer section.
` + unitRecordSchema

const aggregatorSystemPrompt = `You extract rental unit data from a multi-listing aggregator page.
Extract only the primary listing the page is focused on, not the related or
sponsored listings in sidebars and footers.
` + unitRecordSchema

const propertyManagerSystemPrompt = `You extract rental unit data from a property management company page.
The page may mix availability across several buildings; include the building
address on every unit so records stay distinguishable.
` + unitRecordSchema

const brokerageSystemPrompt = `You extract rental unit data from a brokerage listing page.
Brokerage pages often quote broker fees and net-effective rents; record the
advertised gross rent as the price and keep fee or concession wording in
concession_text verbatim.
` + unitRecordSchema

const unknownSystemPrompt = `You extract rental unit data from a web page of unknown layout.
Extract every distinct rentable unit you can identify with a stated price.
When unsure whether two entries describe the same unit, keep both.
` + unitRecordSchema

const extractUserPromptTemplate = `URL: %s

Page content:
%s`
