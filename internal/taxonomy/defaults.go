package taxonomy

// DefaultVersion identifies the built-in taxonomy.
const DefaultVersion = "builtin-2024.1"

// Default returns the built-in taxonomy used until a remote refresh succeeds.
func Default() *Taxonomy {
	return &Taxonomy{
		Version: DefaultVersion,
		Units: []Unit{
			{Name: "Law & Order"},
			{Name: "Traffic", StationKeyword: "Traffic"},
			{Name: "CEN", StationKeyword: "CEN", DistrictScoped: true},
			{Name: "DCRB", IsDistrictLevel: true},
			{Name: "DSB", IsDistrictLevel: true},
			{Name: "CID", IsDistrictLevel: true, ApplicableRanks: []string{"ADGP", "IGP", "DIGP", "SP", "DYSP", "PI", "PSI", "HC", "PC"}},
			{Name: "ISD", IsDistrictLevel: true},
			{
				Name:            "KSRP",
				Sections:        []string{"1st Battalion", "2nd Battalion", "3rd Battalion", "4th Battalion", "5th Battalion"},
				ApplicableRanks: []string{"ADGP", "IGP", "DIGP", "SP", "DYSP", "PI", "PSI", "ASI", "HC", "PC"},
			},
			{
				Name:     "Wireless",
				Sections: []string{"Control Room", "Repeater Station", "Workshop"},
			},
			{Name: "Ministerial", ApplicableRanks: []string{"AO", "Superintendent", "FDA", "SDA", "Typist"}},
		},
		Districts: []string{
			"Bagalkot", "Ballari", "Belagavi", "Bengaluru -CR", "Bengaluru -ER", "Bengaluru -NR",
			"Bengaluru -SR", "Bengaluru -WR", "Bengaluru Rural", "Chikkamagaluru", "Dakshina Kannada",
			"Dharwad", "Hassan", "Kalaburagi", "Kodagu", "Mandya", "Mysuru", "Shivamogga", "Tumakuru", "Udupi",
		},
		DistrictsByUnit: map[string][]string{
			"CID": {"Bengaluru -CR"},
			"ISD": {"Bengaluru -CR"},
			"CEN": {"Bengaluru -CR", "Bengaluru -ER", "Bengaluru -NR", "Bengaluru -SR", "Bengaluru -WR", "Mysuru", "Dakshina Kannada", "Belagavi", "Kalaburagi"},
		},
		StationsByDistrict: map[string][]string{
			"Bengaluru": {
				"Ashok Nagar PS", "Basavanagudi PS", "Cubbon Park PS", "Halasuru Gate PS", "Indiranagar PS",
				"Jayanagar PS", "Whitefield PS", "Yeshwanthpur PS", "Adugodi Traffic PS", "Cubbon Park Traffic PS",
				"Halasuru Traffic PS", "Jayanagar Traffic PS", "Central CEN PS", "East CEN PS", "North CEN PS",
			},
			"Bengaluru Rural": {"Devanahalli PS", "Doddaballapura PS", "Hoskote PS", "Nelamangala PS"},
			"Mysuru": {
				"Devaraja PS", "Lashkar PS", "Mandi PS", "Nazarbad PS", "Vijayanagar PS", "VV Puram PS",
				"Mysuru Traffic PS", "Devaraja Traffic PS", "VV Puram Traffic PS", "Mysuru CEN PS",
			},
			"Mandya":           {"Mandya East PS", "Mandya West PS", "Maddur PS", "Srirangapatna PS", "Mandya Traffic PS"},
			"Dakshina Kannada": {"Bantwal PS", "Puttur PS", "Belthangady PS", "Mangaluru North PS", "Mangaluru Traffic PS", "Mangaluru CEN PS"},
			"Belagavi":         {"Camp PS", "Khade Bazar PS", "Market PS", "Belagavi Traffic PS", "Belagavi CEN PS"},
			"Dharwad":          {"Dharwad Town PS", "Dharwad Rural PS", "Hubballi Traffic PS"},
			"Hassan":           {"Hassan Extension PS", "Hassan Town PS", "Arsikere PS"},
			"Kalaburagi":       {"Brahmapur PS", "Station Bazar PS", "Kalaburagi Traffic PS", "Kalaburagi CEN PS"},
			"Shivamogga":       {"Doddapete PS", "Kote PS", "Shivamogga Traffic PS"},
			"Tumakuru":         {"Tumakuru Town PS", "Tilak Park PS", "Tumakuru Traffic PS"},
			"Udupi":            {"Udupi Town PS", "Manipal PS", "Malpe PS"},
			"Kodagu":           {"Madikeri Town PS", "Virajpet PS"},
			"Chikkamagaluru":   {"Chikkamagaluru Town PS", "Kadur PS"},
			"Ballari":          {"Brucepet PS", "Cowl Bazar PS"},
			"Bagalkot":         {"Bagalkot Town PS", "Jamkhandi PS"},
		},
		Ranks: []string{
			"DGP", "ADGP", "IGP", "DIGP", "SP", "Addl SP", "DYSP", "PI", "PSI", "ASI", "HC", "PC",
			"AO", "Superintendent", "FDA", "SDA", "Typist",
		},
	}
}
