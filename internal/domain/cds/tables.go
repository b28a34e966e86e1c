package cds

// Static clinical-safety knowledge. The tables are declarative data consumed
// by small generic matchers in the rules_* files; the matching algorithm
// (substring either direction on normalized tokens, 3-character code
// prefixes) lives with the matchers, not here.

// crossReactivity maps an allergen class token to the medication tokens
// known to cross-react with it.
var crossReactivity = map[string][]string{
	"penicillin": {
		"amoxicillin", "ampicillin", "augmentin", "piperacillin",
		"dicloxacillin", "nafcillin", "amoxiclav",
	},
	"cephalosporin": {
		"cephalexin", "cefazolin", "ceftriaxone", "cefuroxime", "cefdinir",
	},
	"sulfa": {
		"sulfamethoxazole", "trimethoprimsulfamethoxazole", "bactrim",
		"sulfasalazine", "sulfadiazine",
	},
	"nsaid": {
		"ibuprofen", "naproxen", "ketorolac", "diclofenac", "indomethacin",
		"meloxicam", "celecoxib", "aspirin",
	},
	"aspirin": {
		"ibuprofen", "naproxen", "ketorolac", "diclofenac",
	},
	"codeine": {
		"morphine", "hydrocodone", "oxycodone", "hydromorphone",
	},
	"statin": {
		"atorvastatin", "simvastatin", "rosuvastatin", "pravastatin", "lovastatin",
	},
}

type drugInteraction struct {
	DrugA       string
	DrugB       string
	Severity    string
	Description string
	Mechanism   string
}

// interactionTable holds known drug-drug interaction pairs. Both
// orientations of each row are tested at match time; pairs reachable
// through more than one row are deduplicated by the checker.
var interactionTable = []drugInteraction{
	{
		DrugA: "warfarin", DrugB: "aspirin", Severity: IndicatorCritical,
		Description: "Concurrent use markedly increases bleeding risk.",
		Mechanism:   "Additive anticoagulant and antiplatelet effects.",
	},
	{
		DrugA: "aspirin", DrugB: "warfarin", Severity: IndicatorCritical,
		Description: "Antiplatelet therapy with oral anticoagulation raises the risk of major bleeding.",
		Mechanism:   "Platelet inhibition compounds vitamin K antagonism.",
	},
	{
		DrugA: "warfarin", DrugB: "ibuprofen", Severity: IndicatorCritical,
		Description: "NSAIDs with warfarin increase gastrointestinal bleeding risk.",
		Mechanism:   "Mucosal injury plus impaired hemostasis.",
	},
	{
		DrugA: "warfarin", DrugB: "amiodarone", Severity: IndicatorWarning,
		Description: "Amiodarone potentiates warfarin; INR rises over weeks.",
		Mechanism:   "CYP2C9 inhibition reduces warfarin clearance.",
	},
	{
		DrugA: "sildenafil", DrugB: "nitroglycerin", Severity: IndicatorCritical,
		Description: "PDE5 inhibitors with nitrates can cause profound hypotension.",
		Mechanism:   "Synergistic cGMP-mediated vasodilation.",
	},
	{
		DrugA: "lisinopril", DrugB: "spironolactone", Severity: IndicatorWarning,
		Description: "ACE inhibitor with potassium-sparing diuretic risks hyperkalemia.",
		Mechanism:   "Dual suppression of renal potassium excretion.",
	},
	{
		DrugA: "fluoxetine", DrugB: "tramadol", Severity: IndicatorWarning,
		Description: "SSRIs with tramadol raise serotonin syndrome and seizure risk.",
		Mechanism:   "Additive serotonergic activity; lowered seizure threshold.",
	},
	{
		DrugA: "digoxin", DrugB: "amiodarone", Severity: IndicatorWarning,
		Description: "Amiodarone raises digoxin levels; toxicity may follow.",
		Mechanism:   "P-glycoprotein inhibition reduces digoxin clearance.",
	},
	{
		DrugA: "methotrexate", DrugB: "trimethoprim", Severity: IndicatorCritical,
		Description: "Trimethoprim with methotrexate can cause severe myelosuppression.",
		Mechanism:   "Sequential dihydrofolate reductase blockade.",
	},
	{
		DrugA: "clopidogrel", DrugB: "omeprazole", Severity: IndicatorWarning,
		Description: "Omeprazole reduces clopidogrel's antiplatelet effect.",
		Mechanism:   "CYP2C19 inhibition blocks prodrug activation.",
	},
	{
		DrugA: "simvastatin", DrugB: "gemfibrozil", Severity: IndicatorCritical,
		Description: "Gemfibrozil with simvastatin sharply raises rhabdomyolysis risk.",
		Mechanism:   "OATP1B1 and CYP3A4 inhibition raise statin exposure.",
	},
	{
		DrugA: "ciprofloxacin", DrugB: "tizanidine", Severity: IndicatorCritical,
		Description: "Ciprofloxacin dramatically raises tizanidine levels; severe hypotension and sedation.",
		Mechanism:   "Potent CYP1A2 inhibition.",
	},
}

type contraindicatedDrug struct {
	Token       string
	Severity    string
	Description string
}

// contraindicationTable maps 3-character diagnosis-code prefixes to the
// medication tokens contraindicated for that condition.
var contraindicationTable = map[string][]contraindicatedDrug{
	// Chronic kidney disease
	"N18": {
		{Token: "nsaid", Severity: IndicatorCritical, Description: "NSAIDs accelerate renal function decline in chronic kidney disease."},
		{Token: "ibuprofen", Severity: IndicatorCritical, Description: "NSAIDs accelerate renal function decline in chronic kidney disease."},
		{Token: "naproxen", Severity: IndicatorCritical, Description: "NSAIDs accelerate renal function decline in chronic kidney disease."},
		{Token: "metformin", Severity: IndicatorWarning, Description: "Metformin requires dose review in advanced kidney disease due to lactic acidosis risk."},
	},
	// Heart failure
	"I50": {
		{Token: "nsaid", Severity: IndicatorWarning, Description: "NSAIDs cause fluid retention and can decompensate heart failure."},
		{Token: "ibuprofen", Severity: IndicatorWarning, Description: "NSAIDs cause fluid retention and can decompensate heart failure."},
		{Token: "pioglitazone", Severity: IndicatorCritical, Description: "Thiazolidinediones are contraindicated in symptomatic heart failure."},
		{Token: "diltiazem", Severity: IndicatorWarning, Description: "Non-dihydropyridine calcium channel blockers depress contractility in reduced-EF heart failure."},
	},
	// Asthma
	"J45": {
		{Token: "propranolol", Severity: IndicatorCritical, Description: "Non-selective beta blockers can provoke bronchospasm in asthma."},
		{Token: "nadolol", Severity: IndicatorCritical, Description: "Non-selective beta blockers can provoke bronchospasm in asthma."},
		{Token: "timolol", Severity: IndicatorWarning, Description: "Non-selective beta blockade, including ophthalmic timolol, can worsen asthma."},
	},
	// Liver disease / hepatic failure
	"K70": {
		{Token: "acetaminophen", Severity: IndicatorWarning, Description: "Acetaminophen dosing must be reduced in significant liver disease."},
		{Token: "methotrexate", Severity: IndicatorCritical, Description: "Methotrexate is hepatotoxic and contraindicated in chronic liver disease."},
	},
	"K72": {
		{Token: "acetaminophen", Severity: IndicatorCritical, Description: "Acetaminophen risks fulminant injury in hepatic failure."},
	},
	// GI bleed history
	"K92": {
		{Token: "nsaid", Severity: IndicatorCritical, Description: "NSAIDs risk rebleeding after gastrointestinal hemorrhage."},
		{Token: "ibuprofen", Severity: IndicatorCritical, Description: "NSAIDs risk rebleeding after gastrointestinal hemorrhage."},
		{Token: "aspirin", Severity: IndicatorWarning, Description: "Aspirin raises recurrent GI bleeding risk; review indication."},
		{Token: "warfarin", Severity: IndicatorWarning, Description: "Anticoagulation after GI bleeding needs explicit risk-benefit review."},
	},
	// Myasthenia gravis
	"G70": {
		{Token: "gentamicin", Severity: IndicatorCritical, Description: "Aminoglycosides impair neuromuscular transmission in myasthenia gravis."},
		{Token: "ciprofloxacin", Severity: IndicatorWarning, Description: "Fluoroquinolones can exacerbate myasthenic weakness."},
		{Token: "magnesium", Severity: IndicatorWarning, Description: "Parenteral magnesium can precipitate myasthenic crisis."},
	},
	// Seizure disorder
	"G40": {
		{Token: "bupropion", Severity: IndicatorCritical, Description: "Bupropion lowers the seizure threshold."},
		{Token: "tramadol", Severity: IndicatorWarning, Description: "Tramadol lowers the seizure threshold."},
	},
	// Prolonged QT
	"I45": {
		{Token: "azithromycin", Severity: IndicatorWarning, Description: "Azithromycin prolongs QT; avoid with known QT prolongation."},
		{Token: "ondansetron", Severity: IndicatorWarning, Description: "Ondansetron prolongs QT in a dose-dependent manner."},
		{Token: "haloperidol", Severity: IndicatorCritical, Description: "Haloperidol carries torsades risk with prolonged QT."},
		{Token: "citalopram", Severity: IndicatorWarning, Description: "Citalopram prolongs QT at higher doses."},
	},
}

// renallyCleared lists medication tokens needing caution when renal
// function is impaired.
var renallyCleared = []string{
	"metformin", "gabapentin", "vancomycin", "dabigatran", "enoxaparin",
	"nitrofurantoin", "allopurinol", "lithium", "baclofen",
}

// Renal thresholds: impaired when any eGFR < 60 mL/min or any creatinine
// > 1.5 mg/dL; the first qualifying reading wins.
const (
	egfrImpairedBelow      = 60.0
	creatinineImpairedOver = 1.5
)

type labPrerequisite struct {
	MedToken  string
	LabName   string
	LabTokens []string
	Rationale string
}

// labPrerequisites maps medications to the baseline labs that should be
// ordered alongside them.
var labPrerequisites = []labPrerequisite{
	{
		MedToken: "statin", LabName: "Liver function panel",
		LabTokens: []string{"hepaticfunctionpanel", "liverfunction", "alt", "ast"},
		Rationale: "Baseline transaminases are recommended before starting statin therapy.",
	},
	{
		MedToken: "atorvastatin", LabName: "Liver function panel",
		LabTokens: []string{"hepaticfunctionpanel", "liverfunction", "alt", "ast"},
		Rationale: "Baseline transaminases are recommended before starting statin therapy.",
	},
	{
		MedToken: "amiodarone", LabName: "Thyroid function (TSH)",
		LabTokens: []string{"tsh", "thyroid"},
		Rationale: "Amiodarone causes thyroid dysfunction; obtain baseline TSH.",
	},
	{
		MedToken: "methotrexate", LabName: "Complete blood count",
		LabTokens: []string{"cbc", "completebloodcount"},
		Rationale: "Methotrexate requires baseline CBC to monitor for myelosuppression.",
	},
	{
		MedToken: "lithium", LabName: "Serum creatinine",
		LabTokens: []string{"creatinine", "renalfunction", "basicmetabolicpanel"},
		Rationale: "Lithium is renally cleared; obtain baseline renal function.",
	},
	{
		MedToken: "metformin", LabName: "Serum creatinine",
		LabTokens: []string{"creatinine", "renalfunction", "basicmetabolicpanel"},
		Rationale: "Confirm renal function before starting metformin.",
	},
}

type carePlanEntry struct {
	Title       string
	Description string
	Priority    string
	Rationale   string
	Actions     []string
	SourceLabel string
	SourceURL   string
}

// carePlanTable maps active-condition code prefixes to fixed care-plan
// recommendations. Unmapped conditions produce nothing.
var carePlanTable = map[string]carePlanEntry{
	// Type 2 diabetes
	"E11": {
		Title:       "Diabetes management review",
		Description: "Review HbA1c (target <7% for most adults), annual retinal exam, foot exam, and urine albumin screening.",
		Priority:    IndicatorInfo,
		Rationale:   "Structured follow-up reduces microvascular complications of type 2 diabetes.",
		Actions:     []string{"Order HbA1c", "Refer for retinal exam", "Order urine albumin/creatinine ratio"},
		SourceLabel: "ADA Standards of Care",
		SourceURL:   "https://diabetesjournals.org/care",
	},
	// Essential hypertension
	"I10": {
		Title:       "Hypertension control check",
		Description: "Confirm blood pressure is at goal (<130/80 for most adults); reassess therapy and home monitoring.",
		Priority:    IndicatorInfo,
		Rationale:   "Sustained control lowers stroke and cardiovascular event rates.",
		Actions:     []string{"Record blood pressure", "Review antihypertensive regimen"},
		SourceLabel: "ACC/AHA Hypertension Guideline",
		SourceURL:   "https://www.ahajournals.org/doi/10.1161/HYP.0000000000000065",
	},
	// Heart failure
	"I50": {
		Title:       "Heart failure optimization",
		Description: "Verify guideline-directed medical therapy (ACEi/ARB/ARNI, beta blocker, MRA, SGLT2i) and daily-weight monitoring.",
		Priority:    IndicatorWarning,
		Rationale:   "Each GDMT pillar independently reduces heart-failure mortality.",
		Actions:     []string{"Review GDMT titration", "Order BNP", "Reinforce daily weights"},
		SourceLabel: "AHA/ACC/HFSA Heart Failure Guideline",
		SourceURL:   "https://www.ahajournals.org/doi/10.1161/CIR.0000000000001063",
	},
	// COPD
	"J44": {
		Title:       "COPD maintenance review",
		Description: "Assess inhaler technique, vaccination status, and smoking-cessation support.",
		Priority:    IndicatorInfo,
		Rationale:   "Correct inhaler use and vaccination reduce exacerbation frequency.",
		Actions:     []string{"Review inhaler technique", "Offer influenza and pneumococcal vaccination", "Offer smoking cessation support"},
		SourceLabel: "GOLD Report",
		SourceURL:   "https://goldcopd.org",
	},
	// Chronic kidney disease
	"N18": {
		Title:       "CKD progression monitoring",
		Description: "Track eGFR and albuminuria, review nephrotoxic medications, and consider nephrology referral for advanced stages.",
		Priority:    IndicatorWarning,
		Rationale:   "Early monitoring and medication review slow progression to kidney failure.",
		Actions:     []string{"Order eGFR and urine albumin", "Review nephrotoxic medications"},
		SourceLabel: "KDIGO CKD Guideline",
		SourceURL:   "https://kdigo.org",
	},
	// Asthma
	"J45": {
		Title:       "Asthma control assessment",
		Description: "Assess symptom control, reliever use, and ensure an up-to-date written asthma action plan.",
		Priority:    IndicatorInfo,
		Rationale:   "Regular control assessment reduces exacerbations and reliever overuse.",
		Actions:     []string{"Complete asthma control questionnaire", "Update asthma action plan"},
		SourceLabel: "GINA Report",
		SourceURL:   "https://ginasthma.org",
	},
}

// Colorectal screening window, inclusive whole years.
const (
	colorectalScreenMinAge = 45
	colorectalScreenMaxAge = 75
)

// creatinine / eGFR identification: LOINC codes first, display substrings
// as fallback.
var (
	creatinineCodes  = map[string]bool{"2160-0": true, "38483-4": true}
	egfrCodes        = map[string]bool{"33914-3": true, "48642-3": true, "62238-1": true}
	creatinineLabels = []string{"creatinine"}
	egfrLabels       = []string{"egfr", "glomerularfiltration"}
)
