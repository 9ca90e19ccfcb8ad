package lookup

var countries = []string{
	"Afghanistan", "Albania", "Algeria", "Argentina", "Australia", "Austria",
	"Bangladesh", "Belgium", "Brazil", "Brunei Darussalam", "Cambodia", "Canada",
	"Chile", "China", "Colombia", "Denmark", "Egypt", "Finland", "France",
	"Germany", "Ghana", "Greece", "Hong Kong", "India", "Indonesia", "Ireland",
	"Israel", "Italy", "Japan", "Kenya", "Korea, Republic of", "Lao People's Democratic Republic",
	"Malaysia", "Mexico", "Myanmar", "Nepal", "Netherlands", "New Zealand",
	"Nigeria", "Norway", "Pakistan", "Peru", "Philippines", "Poland", "Portugal",
	"Qatar", "Russian Federation", "Saudi Arabia", "Singapore", "South Africa",
	"Spain", "Sri Lanka", "Sweden", "Switzerland", "Taiwan", "Thailand",
	"Timor-Leste", "Turkey", "Ukraine", "United Arab Emirates", "United Kingdom",
	"United States", "Viet Nam",
}

var provinces = map[string][]string{
	"Philippines": {
		"Abra", "Agusan del Norte", "Agusan del Sur", "Aklan", "Albay", "Antique",
		"Apayao", "Aurora", "Basilan", "Bataan", "Batanes", "Batangas", "Benguet",
		"Biliran", "Bohol", "Bukidnon", "Bulacan", "Cagayan", "Camarines Norte",
		"Camarines Sur", "Camiguin", "Capiz", "Catanduanes", "Cavite", "Cebu",
		"Cotabato", "Davao de Oro", "Davao del Norte", "Davao del Sur",
		"Davao Occidental", "Davao Oriental", "Dinagat Islands", "Eastern Samar",
		"Guimaras", "Ifugao", "Ilocos Norte", "Ilocos Sur", "Iloilo", "Isabela",
		"Kalinga", "La Union", "Laguna", "Lanao del Norte", "Lanao del Sur", "Leyte",
		"Maguindanao", "Marinduque", "Masbate", "Metro Manila", "Misamis Occidental",
		"Misamis Oriental", "Mountain Province", "Negros Occidental", "Negros Oriental",
		"Northern Samar", "Nueva Ecija", "Nueva Vizcaya", "Occidental Mindoro",
		"Oriental Mindoro", "Palawan", "Pampanga", "Pangasinan", "Quezon", "Quirino",
		"Rizal", "Romblon", "Samar", "Sarangani", "Siquijor", "Sorsogon",
		"South Cotabato", "Southern Leyte", "Sultan Kudarat", "Sulu", "Surigao del Norte",
		"Surigao del Sur", "Tarlac", "Tawi-Tawi", "Zambales", "Zamboanga del Norte",
		"Zamboanga del Sur", "Zamboanga Sibugay",
	},
	"Canada": {
		"Alberta", "British Columbia", "Manitoba", "New Brunswick",
		"Newfoundland and Labrador", "Northwest Territories", "Nova Scotia", "Nunavut",
		"Ontario", "Prince Edward Island", "Quebec", "Saskatchewan", "Yukon",
	},
	"Australia": {
		"Australian Capital Territory", "New South Wales", "Northern Territory",
		"Queensland", "South Australia", "Tasmania", "Victoria", "Western Australia",
	},
	"United States": {
		"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
		"Connecticut", "Delaware", "District of Columbia", "Florida", "Georgia",
		"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
		"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
		"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire",
		"New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota",
		"Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island",
		"South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
		"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
	},
}
