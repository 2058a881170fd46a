package domain

// CanonicalCatalog returns the built-in twelve-question enrollment assessment,
// two questions per category.
func CanonicalCatalog() Catalog {
	return Catalog{Questions: []Question{
		{
			Category: CategoryClarify,
			Prompt:   "Do you have a clearly defined ideal student/client profile and brand messaging that speaks directly to them?",
			Options: []Option{
				{Text: "Yes, we have detailed personas and consistent messaging across all channels", Score: 3},
				{Text: "Somewhat - we know our audience but messaging is inconsistent", Score: 2},
				{Text: "We have a general idea but nothing documented", Score: 1},
				{Text: "No, we try to appeal to everyone", Score: 0},
			},
		},
		{
			Category: CategoryClarify,
			Prompt:   "How well do you understand what motivates your prospects to choose your service?",
			Options: []Option{
				{Text: "Very well - we regularly survey students/parents and know their pain points", Score: 3},
				{Text: "Pretty well - we have some insights from conversations", Score: 2},
				{Text: "Not very well - we assume we know what they want", Score: 1},
				{Text: "We don't really know", Score: 0},
			},
		},
		{
			Category: CategoryInvite,
			Prompt:   "Do you have a lead generation system with dedicated landing pages and compelling offers?",
			Options: []Option{
				{Text: "Yes, multiple optimized landing pages with strong offers (free trials, workshops, etc.)", Score: 3},
				{Text: "We have one landing page and an offer", Score: 2},
				{Text: "We just direct people to our homepage", Score: 1},
				{Text: "We don't have any specific offers or landing pages", Score: 0},
			},
		},
		{
			Category: CategoryInvite,
			Prompt:   "How are you currently generating new leads?",
			Options: []Option{
				{Text: "Multiple active channels: ads, SEO, referrals, partnerships all working together", Score: 3},
				{Text: "One or two channels working consistently", Score: 2},
				{Text: "Mostly word-of-mouth and sporadic efforts", Score: 1},
				{Text: "We struggle to generate consistent leads", Score: 0},
			},
		},
		{
			Category: CategoryReview,
			Prompt:   "Do you pre-qualify leads before they come in for a trial or consultation?",
			Options: []Option{
				{Text: "Yes, we have a qualification process that filters out poor-fit prospects", Score: 3},
				{Text: "Somewhat - we ask basic questions", Score: 2},
				{Text: "Rarely - we take almost everyone who inquires", Score: 1},
				{Text: "No, we accept everyone regardless of fit", Score: 0},
			},
		},
		{
			Category: CategoryReview,
			Prompt:   "Do you have an automated system to nurture and educate prospects before they visit?",
			Options: []Option{
				{Text: "Yes, automated email/SMS sequences that educate and build excitement", Score: 3},
				{Text: "We send some emails manually", Score: 2},
				{Text: "We confirm the appointment and that's it", Score: 1},
				{Text: "No follow-up until they show up", Score: 0},
			},
		},
		{
			Category: CategoryConvert,
			Prompt:   "What percentage of trial students/clients enroll in your full program?",
			Options: []Option{
				{Text: "60% or higher", Score: 3},
				{Text: "40-59%", Score: 2},
				{Text: "20-39%", Score: 1},
				{Text: "Less than 20% or I don't track this", Score: 0},
			},
		},
		{
			Category: CategoryConvert,
			Prompt:   "Do you have a structured enrollment conversation or process after the trial?",
			Options: []Option{
				{Text: "Yes, a proven enrollment script/process with clear pricing presentation", Score: 3},
				{Text: "We have a loose process", Score: 2},
				{Text: "We wing it based on how we feel", Score: 1},
				{Text: "We just hope they sign up", Score: 0},
			},
		},
		{
			Category: CategoryLoopback,
			Prompt:   "What happens when someone doesn't enroll immediately (says \"I need to think about it\")?",
			Options: []Option{
				{Text: "Automated follow-up sequence with multiple touchpoints to re-engage", Score: 3},
				{Text: "We manually follow up once or twice", Score: 2},
				{Text: "We follow up if we remember", Score: 1},
				{Text: "Nothing - we wait for them to come back to us", Score: 0},
			},
		},
		{
			Category: CategoryLoopback,
			Prompt:   "Do you track and measure your follow-up effectiveness?",
			Options: []Option{
				{Text: "Yes, we have detailed tracking in a CRM system", Score: 3},
				{Text: "We track some metrics in spreadsheets", Score: 2},
				{Text: "We have a general sense of what works", Score: 1},
				{Text: "We don't track follow-up results", Score: 0},
			},
		},
		{
			Category: CategoryExcite,
			Prompt:   "Do you have systems in place to keep enrolled students/clients engaged and excited?",
			Options: []Option{
				{Text: "Yes, regular communication, milestone celebrations, and community building", Score: 3},
				{Text: "We do some events or newsletters", Score: 2},
				{Text: "Basic communication about logistics only", Score: 1},
				{Text: "Once they enroll, we don't have much ongoing engagement", Score: 0},
			},
		},
		{
			Category: CategoryExcite,
			Prompt:   "What percentage of your new enrollments come from referrals?",
			Options: []Option{
				{Text: "40% or more", Score: 3},
				{Text: "20-39%", Score: 2},
				{Text: "10-19%", Score: 1},
				{Text: "Less than 10% or I don't track this", Score: 0},
			},
		},
	}}
}
